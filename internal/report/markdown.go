package report

import (
	"io"

	"github.com/nao1215/markdown"

	"github.com/nao1215/deputes/internal/model"
)

// MarkdownWriter writes records as a GitHub Flavored Markdown table.
type MarkdownWriter struct {
	baseWriter
	title string
}

// NewMarkdownWriter creates a MarkdownWriter for fields.
func NewMarkdownWriter(output io.Writer, fields []model.Field) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output, fields),
		title:      "Députés",
	}
}

// Write outputs the title, a member count and the records table.
func (w *MarkdownWriter) Write(records []model.Record) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(w.title)
	md.PlainText("")
	md.PlainTextf("%d members, %d with every field.", len(records), completeCount(records))
	md.PlainText("")

	if len(records) == 0 {
		md.Note("No member was extracted.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(w.fields))
		for i, f := range w.fields {
			row[i] = rec.Value(f)
		}
		rows = append(rows, row)
	}
	md.Table(markdown.TableSet{
		Header: model.Labels(w.fields),
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

func completeCount(records []model.Record) int {
	n := 0
	for _, rec := range records {
		if rec.IsComplete() {
			n++
		}
	}
	return n
}
