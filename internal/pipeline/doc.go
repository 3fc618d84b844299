// Package pipeline runs a scrape as a sequence of steps over a model.Run:
// list the members of the requested regions, extract each member's
// details, then optionally persist the run.
//
// Detail extraction is fanned out by a Dispatcher: a work queue read by a
// bounded number of workers, whose records are collected from a single
// results channel. Every reference yields exactly one record.
package pipeline
