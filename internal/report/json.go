package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/deputes/internal/model"
)

// JSONWriter writes records as a JSON document restricted to the
// selected fields. Unset values are null.
type JSONWriter struct {
	baseWriter
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter for fields.
func NewJSONWriter(output io.Writer, fields []model.Field, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output, fields)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	Fields  []model.Field        `json:"fields"`
	Count   int                  `json:"count"`
	Records []map[string]*string `json:"records"`
}

// NewJSONReport builds the document for records. Keys are the canonical
// field identifiers.
func NewJSONReport(records []model.Record, fields []model.Field) *JSONReport {
	doc := &JSONReport{
		Fields:  fields,
		Count:   len(records),
		Records: make([]map[string]*string, 0, len(records)),
	}
	for _, rec := range records {
		m := make(map[string]*string, len(fields))
		for _, f := range fields {
			c, _ := f.Canonical()
			m[string(c)] = fieldPointer(rec, c)
		}
		doc.Records = append(doc.Records, m)
	}
	return doc
}

func fieldPointer(rec model.Record, f model.Field) *string {
	switch f {
	case model.FieldName:
		return &rec.Name
	case model.FieldRegion:
		return &rec.Region
	case model.FieldEmail:
		return rec.Email
	case model.FieldGroup:
		return rec.Group
	case model.FieldDistrict:
		return rec.District
	default:
		return nil
	}
}

// Write encodes records.
func (w *JSONWriter) Write(records []model.Record) (int, error) {
	var (
		data []byte
		err  error
	)
	doc := NewJSONReport(records, w.fields)
	if w.indent != "" {
		data, err = json.MarshalIndent(doc, "", w.indent)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
