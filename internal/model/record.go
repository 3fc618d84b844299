package model

import (
	"sort"
	"strings"
)

// EntityReference identifies one member found on the roster page.
// Region is the region heading that preceded the member in document order.
type EntityReference struct {
	// Name is the visible text of the roster link.
	Name string `json:"name"`

	// DetailRef is the absolute URL of the roster link.
	DetailRef string `json:"detail_ref"`

	// Region is the exact text of the enclosing region heading.
	Region string `json:"region"`
}

// Record is the structured extraction for one member.
// Optional fields are nil when the detail page did not provide them.
type Record struct {
	Name     string  `json:"name"`
	Region   string  `json:"region"`
	Email    *string `json:"email"`
	Group    *string `json:"group"`
	District *string `json:"district"`

	// Source is the canonical detail URL, empty when it could not be derived.
	Source string `json:"source,omitempty"`
}

// NewRecord returns a Record for ref with every optional field unset.
func NewRecord(ref EntityReference) Record {
	return Record{
		Name:   ref.Name,
		Region: ref.Region,
	}
}

// IsComplete reports whether every optional field was extracted.
func (r Record) IsComplete() bool {
	return r.Email != nil && r.Group != nil && r.District != nil
}

// StringPtr returns a pointer to s, or nil if s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// deref returns the pointed-to string or "".
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SortRecords orders records by name, then region.
// Concurrent extraction yields records in completion order; callers that
// need a stable order sort afterwards.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].Region < records[j].Region
	})
}
