package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrExhaustedRetries is wrapped by Failure.Err when every attempt failed.
	ErrExhaustedRetries = errors.New("all fetch attempts failed")

	// ErrHTTPStatus is wrapped by TransportError when the server answered
	// with an error status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

// TransportError describes one failed attempt.
type TransportError struct {
	// Attempt is the 1-based attempt index.
	Attempt int

	// URL is the requested URL.
	URL string

	// Status is the HTTP status code, zero when no response was received.
	Status int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("attempt %d for %s: status %d: %v", e.Attempt, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("attempt %d for %s: %v", e.Attempt, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}
