// Package database stores scrape runs in SQLite (modernc.org/sqlite, no
// cgo) so successive runs can be listed and compared.
//
// The schema has two tables: runs, one row per pipeline execution, and
// records, one row per extracted member, keyed by run and position.
package database
