package config

import (
	"fmt"

	"github.com/nao1215/deputes/internal/model"
)

// File is the structure of the .deputes.yaml configuration file.
// Every key is optional; unset keys keep the current value.
type File struct {
	// Site overrides the target website.
	Site SiteFile `yaml:"site,omitempty"`

	// Regions replaces the default region list.
	Regions []string `yaml:"regions,omitempty"`

	// Fields replaces the default output fields.
	Fields []string `yaml:"fields,omitempty"`

	// Threads is the worker count.
	Threads *int `yaml:"threads,omitempty"`

	// Retries is the number of attempts per page.
	Retries *int `yaml:"retries,omitempty"`

	// Delay is the wait between attempts, in seconds.
	Delay *float64 `yaml:"delay,omitempty"`

	// Timeout bounds an attempt, in seconds.
	Timeout *float64 `yaml:"timeout,omitempty"`

	// UserAgent replaces the default User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are added to every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Sort orders the output by name, then region.
	Sort *bool `yaml:"sort,omitempty"`

	// LogFormat is text or json.
	LogFormat string `yaml:"logFormat,omitempty"`
}

// SiteFile holds the site keys of the configuration file.
type SiteFile struct {
	RosterURL         string `yaml:"rosterUrl,omitempty"`
	BaseURL           string `yaml:"baseUrl,omitempty"`
	DetailLinkPrefix  string `yaml:"detailLinkPrefix,omitempty"`
	DetailIDPattern   string `yaml:"detailIdPattern,omitempty"`
	DetailURLTemplate string `yaml:"detailUrlTemplate,omitempty"`
}

// Apply overlays the values set in f onto c.
// Unknown field identifiers are reported as ErrUnknownField.
func (f *File) Apply(c *Config) error {
	if f == nil {
		return nil
	}
	setString(&c.RosterURL, f.Site.RosterURL)
	setString(&c.BaseURL, f.Site.BaseURL)
	setString(&c.DetailLinkPrefix, f.Site.DetailLinkPrefix)
	setString(&c.DetailIDPattern, f.Site.DetailIDPattern)
	setString(&c.DetailURLTemplate, f.Site.DetailURLTemplate)
	setString(&c.UserAgent, f.UserAgent)
	setString(&c.LogFormat, f.LogFormat)

	if len(f.Regions) > 0 {
		c.Regions = append([]string(nil), f.Regions...)
	}
	if len(f.Fields) > 0 {
		fields := make([]model.Field, 0, len(f.Fields))
		for _, name := range f.Fields {
			fields = append(fields, model.Field(name))
		}
		if err := model.ValidateFields(fields); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		c.Fields = fields
	}
	if f.Threads != nil {
		c.Workers = *f.Threads
	}
	if f.Retries != nil {
		c.MaxAttempts = *f.Retries
	}
	if f.Delay != nil {
		c.Delay = Seconds(*f.Delay)
	}
	if f.Timeout != nil {
		c.Timeout = Seconds(*f.Timeout)
	}
	if f.Sort != nil {
		c.Sort = *f.Sort
	}
	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			c.Headers[k] = v
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
