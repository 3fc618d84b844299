package crawler

import "errors"

var (
	// ErrRosterUnavailable is returned when the roster page could not be fetched.
	ErrRosterUnavailable = errors.New("roster page unavailable")

	// ErrIdentifierNotFound is returned when a detail link does not carry
	// the member identifier expected by the site's pattern.
	ErrIdentifierNotFound = errors.New("member identifier not found in detail link")

	// ErrStructuralMismatch reports an expected node missing from a page.
	ErrStructuralMismatch = errors.New("expected node not found")

	// ErrInvalidSite is returned for an unusable Site definition.
	ErrInvalidSite = errors.New("invalid site definition")
)
