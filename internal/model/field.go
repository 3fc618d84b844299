package model

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field is an output field identifier as chosen by the user.
// The identifier is kept verbatim because the rendered label is derived
// from it; Canonical resolves aliases.
type Field string

// Canonical field identifiers, in default output order.
const (
	FieldName     Field = "nom"
	FieldRegion   Field = "region"
	FieldEmail    Field = "email"
	FieldGroup    Field = "groupe"
	FieldDistrict Field = "circonscription"
)

// ErrUnknownField is returned when a field identifier is not recognized.
var ErrUnknownField = errors.New("unknown field")

// fieldAliases maps accepted identifiers to canonical ones.
var fieldAliases = map[string]Field{
	"nom":             FieldName,
	"name":            FieldName,
	"region":          FieldRegion,
	"email":           FieldEmail,
	"groupe":          FieldGroup,
	"group":           FieldGroup,
	"circonscription": FieldDistrict,
	"district":        FieldDistrict,
}

// DefaultFields returns all five fields in default order.
func DefaultFields() []Field {
	return []Field{FieldName, FieldRegion, FieldEmail, FieldGroup, FieldDistrict}
}

// Canonical returns the canonical identifier for f.
func (f Field) Canonical() (Field, bool) {
	c, ok := fieldAliases[strings.ToLower(string(f))]
	return c, ok
}

// Label returns the identifier with its first letter capitalized
// ("nom" -> "Nom").
func (f Field) Label() string {
	return cases.Title(language.Und).String(string(f))
}

// ParseFields parses a comma-separated field list such as "nom,email".
// Blank entries are ignored. An empty input yields DefaultFields.
func ParseFields(s string) ([]Field, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultFields(), nil
	}
	var fields []Field
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := Field(part)
		if _, ok := f.Canonical(); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, part)
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return DefaultFields(), nil
	}
	return fields, nil
}

// ValidateFields checks that every field is recognized.
func ValidateFields(fields []Field) error {
	for _, f := range fields {
		if _, ok := f.Canonical(); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, string(f))
		}
	}
	return nil
}

// Value returns the record's value for f, "" when unset or unknown.
func (r Record) Value(f Field) string {
	c, _ := f.Canonical()
	switch c {
	case FieldName:
		return r.Name
	case FieldRegion:
		return r.Region
	case FieldEmail:
		return deref(r.Email)
	case FieldGroup:
		return deref(r.Group)
	case FieldDistrict:
		return deref(r.District)
	default:
		return ""
	}
}

// Labels returns the labels of fields in order.
func Labels(fields []Field) []string {
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = f.Label()
	}
	return labels
}
