package report

import (
	"io"

	"github.com/nao1215/deputes/internal/model"
)

// Writer writes a set of records in one output format.
type Writer interface {
	// Write outputs records and returns the number of bytes written.
	Write(records []model.Record) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	fields []model.Field
}

func newBaseWriter(output io.Writer, fields []model.Field) baseWriter {
	if len(fields) == 0 {
		fields = model.DefaultFields()
	}
	return baseWriter{output: output, fields: fields}
}

// TextWriter writes the plain-text rendering.
type TextWriter struct {
	baseWriter
	mode            Mode
	trailingNewline bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithTrailingNewline terminates the output with a newline, as expected
// on a terminal stream.
func WithTrailingNewline() TextWriterOption {
	return func(w *TextWriter) {
		w.trailingNewline = true
	}
}

// NewTextWriter creates a TextWriter for fields in mode.
func NewTextWriter(output io.Writer, fields []model.Field, mode Mode, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output, fields), mode: mode}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders records and writes them.
func (w *TextWriter) Write(records []model.Record) (int, error) {
	out := Render(records, w.fields, w.mode)
	if w.trailingNewline {
		out += "\n"
	}
	return io.WriteString(w.output, out)
}
