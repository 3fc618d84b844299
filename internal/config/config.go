package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/deputes/internal/crawler"
	"github.com/nao1215/deputes/internal/fetch"
	"github.com/nao1215/deputes/internal/model"
)

// Default configuration values.
const (
	// DefaultWorkers runs detail extraction sequentially.
	DefaultWorkers = 1

	// DefaultMaxAttempts is the number of fetch attempts per page.
	DefaultMaxAttempts = fetch.DefaultMaxAttempts

	// DefaultDelay is the wait between two attempts on the same page.
	DefaultDelay = fetch.DefaultDelay

	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = fetch.DefaultTimeout

	// AppName is the application name used for XDG directory paths.
	AppName = "deputes"
)

// Log formats accepted by LogFormat.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds every option of a scrape run.
// It is built once from defaults, the config file and flags, validated,
// then passed down by value of its parts (Site, Params).
type Config struct {
	// RosterURL is the page listing every member by region.
	RosterURL string

	// BaseURL resolves relative links of the roster page.
	BaseURL string

	// DetailLinkPrefix selects roster links pointing to member pages.
	DetailLinkPrefix string

	// DetailIDPattern extracts the member identifier from a roster link.
	DetailIDPattern string

	// DetailURLTemplate builds the canonical detail URL from the identifier.
	DetailURLTemplate string

	// Regions are the region headings to extract, in output order.
	Regions []string

	// Fields are the output fields in display order.
	Fields []model.Field

	// Workers is the number of concurrent detail extractions.
	Workers int

	// MaxAttempts is the number of fetch attempts per page.
	MaxAttempts int

	// Delay is the wait between two attempts on the same page.
	Delay time.Duration

	// Timeout bounds a single fetch attempt.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers.
	Headers map[string]string

	// Bare prints values without labels.
	Bare bool

	// NoSeparator suppresses the record separator when Bare is set and a
	// single field is selected.
	NoSeparator bool

	// Table appends a summary table to text output.
	Table bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path; stdout when empty.
	ReportFile string

	// Sort orders records by name, then region, before output.
	Sort bool

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is LogFormatText or LogFormatJSON.
	LogFormat string

	// ConfigFilePath is the configuration file given on the command line.
	ConfigFilePath string

	// SaveToDB stores the run in the database under DBDir.
	SaveToDB bool

	// DBDir is the directory of the SQLite database.
	DBDir string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		RosterURL:         crawler.DefaultRosterURL,
		BaseURL:           crawler.DefaultBaseURL,
		DetailLinkPrefix:  crawler.DefaultDetailLinkPrefix,
		DetailIDPattern:   crawler.DefaultDetailIDPattern,
		DetailURLTemplate: crawler.DefaultDetailURLTemplate,
		Regions:           append([]string(nil), crawler.DefaultRegions...),
		Fields:            model.DefaultFields(),
		Workers:           DefaultWorkers,
		MaxAttempts:       DefaultMaxAttempts,
		Delay:             DefaultDelay,
		Timeout:           DefaultTimeout,
		UserAgent:         fetch.DefaultUserAgent,
		Headers:           make(map[string]string),
		LogFormat:         LogFormatText,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the data directory, ~/.local/share/deputes on Linux.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory, ~/.config/deputes on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Regions) == 0 {
		return ErrNoRegion
	}
	for _, r := range c.Regions {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("%w: empty region name", ErrNoRegion)
		}
	}
	if c.MaxAttempts < 1 {
		return ErrInvalidRetries
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if err := model.ValidateFields(c.Fields); err != nil {
		return err
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}
	if err := validateHTTPURL(c.RosterURL); err != nil {
		return fmt.Errorf("roster URL: %w", err)
	}
	if err := validateHTTPURL(c.BaseURL); err != nil {
		return fmt.Errorf("base URL: %w", err)
	}
	re, err := regexp.Compile(c.DetailIDPattern)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDetailPattern, err)
	}
	if re.NumSubexp() < 1 {
		return ErrInvalidDetailPattern
	}
	if !strings.Contains(c.DetailURLTemplate, crawler.IDPlaceholder) {
		return ErrInvalidDetailTemplate
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

// Site returns the crawler site definition.
func (c *Config) Site() crawler.Site {
	return crawler.Site{
		RosterURL:         c.RosterURL,
		BaseURL:           c.BaseURL,
		DetailLinkPrefix:  c.DetailLinkPrefix,
		DetailIDPattern:   c.DetailIDPattern,
		DetailURLTemplate: c.DetailURLTemplate,
	}
}

// Params returns the fetch parameters.
func (c *Config) Params() fetch.Params {
	return fetch.Params{
		MaxAttempts: c.MaxAttempts,
		Delay:       c.Delay,
		Timeout:     c.Timeout,
	}
}

// Seconds converts a flag or file value in seconds to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
