// Package report renders extracted records.
//
// Render produces the plain-text output: one line per selected field,
// labeled ("Nom: Dupont") or bare ("Dupont"), a dashed separator after
// each record and an optional summary table. TextWriter, JSONWriter and
// MarkdownWriter write records to a Destination opened with Open.
package report
