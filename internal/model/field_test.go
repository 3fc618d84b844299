package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestParseFields tests parsing of comma-separated field selections.
func TestParseFields(t *testing.T) {
	t.Parallel()

	t.Run("empty input returns all fields in default order", func(t *testing.T) {
		t.Parallel()

		fields, err := ParseFields("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(DefaultFields(), fields); diff != "" {
			t.Errorf("fields mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("keeps caller order and trims spaces", func(t *testing.T) {
		t.Parallel()

		fields, err := ParseFields(" email , nom")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []Field{"email", "nom"}
		if diff := cmp.Diff(want, fields); diff != "" {
			t.Errorf("fields mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("accepts english aliases", func(t *testing.T) {
		t.Parallel()

		fields, err := ParseFields("name,group,district")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fields) != 3 {
			t.Fatalf("expected 3 fields, got %d", len(fields))
		}
		c, ok := fields[2].Canonical()
		if !ok || c != FieldDistrict {
			t.Errorf("expected district to resolve to %q, got %q", FieldDistrict, c)
		}
	})

	t.Run("unknown field returns ErrUnknownField", func(t *testing.T) {
		t.Parallel()

		_, err := ParseFields("nom,phone")
		if !errors.Is(err, ErrUnknownField) {
			t.Errorf("expected ErrUnknownField, got %v", err)
		}
	})
}

// TestFieldLabel tests label capitalization.
func TestFieldLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field Field
		want  string
	}{
		{FieldName, "Nom"},
		{FieldEmail, "Email"},
		{FieldDistrict, "Circonscription"},
		{"name", "Name"},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			t.Parallel()
			if got := tt.field.Label(); got != tt.want {
				t.Errorf("expected label %q, got %q", tt.want, got)
			}
		})
	}
}

// TestRecordValue tests value lookup through canonical fields and aliases.
func TestRecordValue(t *testing.T) {
	t.Parallel()

	rec := Record{
		Name:   "Dupont",
		Region: "Bretagne",
		Email:  StringPtr("d@x.fr"),
	}

	if got := rec.Value(FieldName); got != "Dupont" {
		t.Errorf("expected Dupont, got %q", got)
	}
	if got := rec.Value("name"); got != "Dupont" {
		t.Errorf("expected alias to resolve, got %q", got)
	}
	if got := rec.Value(FieldEmail); got != "d@x.fr" {
		t.Errorf("expected email, got %q", got)
	}
	if got := rec.Value(FieldGroup); got != "" {
		t.Errorf("expected empty group, got %q", got)
	}
	if got := rec.Value("unknown"); got != "" {
		t.Errorf("expected empty value for unknown field, got %q", got)
	}
}
