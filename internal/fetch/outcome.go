package fetch

import "time"

// Outcome is the result of a fetch: either Success or Failure.
type Outcome interface {
	outcome()
}

// Success is returned by the first attempt that received a non-error response.
type Success struct {
	// URL is the requested URL.
	URL string

	// Status is the HTTP status code of the response.
	Status int

	// Body is the full response body.
	Body []byte

	// Attempts is the number of attempts made, including the successful one.
	Attempts int
}

// Failure is returned when every attempt failed.
type Failure struct {
	// URL is the requested URL.
	URL string

	// Err wraps ErrExhaustedRetries and the last attempt's error.
	Err error

	// Attempts is the number of attempts made.
	Attempts int
}

func (Success) outcome() {}
func (Failure) outcome() {}

// Params bound one fetch sequence.
type Params struct {
	// MaxAttempts is the number of attempts, at least 1.
	MaxAttempts int

	// Delay is the pause between a failed attempt and the next one.
	Delay time.Duration

	// Timeout bounds each attempt.
	Timeout time.Duration
}

// Default parameter values.
const (
	DefaultMaxAttempts = 3
	DefaultDelay       = time.Duration(0)
	DefaultTimeout     = 10 * time.Second
)

// DefaultParams returns the default fetch parameters.
func DefaultParams() Params {
	return Params{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
		Timeout:     DefaultTimeout,
	}
}

// normalize clamps invalid values to their defaults.
// Configuration is validated before any fetch; this only guards direct
// library use.
func (p Params) normalize() Params {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	return p
}
