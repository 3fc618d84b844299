// Package model defines the data structures shared across deputes.
//
// This package contains the following main types:
//   - EntityReference: a member discovered on the roster page
//   - Record: the structured extraction for one member
//   - Field: an output field identifier and its label
//   - Run: one execution of the extraction pipeline
//   - Diff: the changes between the records of two runs
//
// Types are kept free of I/O so that the crawler, pipeline, report and
// database packages can all depend on them without import cycles.
package model
