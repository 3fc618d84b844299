package config

import (
	"errors"

	"github.com/nao1215/deputes/internal/model"
)

// Configuration validation errors returned by Config.Validate.
// They are fatal: no request is made once one is reported.
var (
	// ErrNoRegion is returned when no region heading is configured.
	ErrNoRegion = errors.New("no region specified: use --region or the regions key of the config file")

	// ErrInvalidRetries is returned when the attempt count is below one.
	ErrInvalidRetries = errors.New("invalid retries: must be at least 1")

	// ErrInvalidTimeout is returned when the per-attempt timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the delay between attempts is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is below one.
	ErrInvalidWorkers = errors.New("invalid threads: must be at least 1")

	// ErrUnknownField is returned for an unrecognized output field.
	ErrUnknownField = model.ErrUnknownField

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrInvalidURL is returned when the roster or base URL is not absolute.
	ErrInvalidURL = errors.New("invalid URL: must be an absolute http or https URL")

	// ErrInvalidDetailPattern is returned when the detail identifier pattern
	// does not compile or has no capture group.
	ErrInvalidDetailPattern = errors.New("invalid detail id pattern: must be a regular expression with one capture group")

	// ErrInvalidDetailTemplate is returned when the detail URL template lacks
	// the identifier placeholder.
	ErrInvalidDetailTemplate = errors.New("invalid detail URL template: must contain {id}")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
