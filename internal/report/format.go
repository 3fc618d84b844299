package report

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nao1215/deputes/internal/model"
)

const (
	// SeparatorWidth is the number of dashes between two records.
	SeparatorWidth = 40

	// TableTitle introduces the summary table.
	TableTitle = "=== TABLEAU RÉCAPITULATIF ==="

	cellSeparator   = " | "
	headerJunction  = "-+-"
	labelValueDelim = ": "
)

// cellWidth measures table cells. It ignores the locale so that ambiguous
// characters such as accented letters always count as one column.
var cellWidth = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// Mode selects how records are rendered.
type Mode struct {
	// Bare prints values without their label.
	Bare bool

	// NoSeparator drops the dashed line after each record. It only
	// applies when Bare is set and exactly one field is selected.
	NoSeparator bool

	// Table appends a summary table after the record lines.
	Table bool
}

// skipSeparator reports whether separators are suppressed for fields.
func (m Mode) skipSeparator(fields []model.Field) bool {
	return m.Bare && len(fields) == 1 && m.NoSeparator
}

// Render renders records in order. Lines are joined with "\n" and the
// result has no trailing newline unless a table is appended.
// Unset values render as empty strings.
func Render(records []model.Record, fields []model.Field, mode Mode) string {
	separator := strings.Repeat("-", SeparatorWidth)
	skip := mode.skipSeparator(fields)

	lines := make([]string, 0, len(records)*(len(fields)+1))
	for _, rec := range records {
		for _, f := range fields {
			if mode.Bare {
				lines = append(lines, rec.Value(f))
			} else {
				lines = append(lines, f.Label()+labelValueDelim+rec.Value(f))
			}
		}
		if !skip {
			lines = append(lines, separator)
		}
	}

	out := strings.Join(lines, "\n")
	if mode.Table {
		out += "\n\n" + TableTitle + "\n" + RenderTable(records, fields) + "\n"
	}
	return out
}

// RenderTable renders records as an aligned text table. The header row
// holds the field labels and is followed by a row of dashes.
// Column widths are display widths, so accented and wide characters
// stay aligned.
func RenderTable(records []model.Record, fields []model.Field) string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, model.Labels(fields))
	for _, rec := range records {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = rec.Value(f)
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(fields))
	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], cellWidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		cells := make([]string, len(row))
		for c, cell := range row {
			cells[c] = cellWidth.FillRight(cell, widths[c])
		}
		lines = append(lines, strings.Join(cells, cellSeparator))
		if i == 0 {
			dashes := make([]string, len(widths))
			for c, w := range widths {
				dashes[c] = strings.Repeat("-", w)
			}
			lines = append(lines, strings.Join(dashes, headerJunction))
		}
	}
	return strings.Join(lines, "\n")
}
