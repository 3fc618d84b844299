// Package config holds the settings of a scrape run: where the roster
// lives, which regions and fields to extract, and how hard to retry.
//
// Values come from three layers, lowest first: NewConfig defaults, an
// optional YAML file (see FindConfigFile), then command-line flags.
package config
