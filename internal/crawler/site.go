package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Default site values for the French Assemblée nationale.
const (
	DefaultRosterURL         = "https://www2.assemblee-nationale.fr/deputes/liste/regions"
	DefaultBaseURL           = "https://www.assemblee-nationale.fr"
	DefaultDetailLinkPrefix  = "/deputes/fiche/"
	DefaultDetailIDPattern   = `/deputes/fiche/OMC_(PA\d+)`
	DefaultDetailURLTemplate = DefaultBaseURL + "/dyn/deputes/{id}"

	// IDPlaceholder is replaced by the member identifier in DetailURLTemplate.
	IDPlaceholder = "{id}"
)

// DefaultRegions are the region headings processed when none are configured.
var DefaultRegions = []string{
	"Ile-de-France",
	"Provence-Alpes-Côte d'Azur",
}

// Site describes where members are listed and how their detail pages are
// addressed.
type Site struct {
	// RosterURL is the page listing every member by region.
	RosterURL string

	// BaseURL resolves relative links found on the roster page.
	BaseURL string

	// DetailLinkPrefix selects roster links that point to member pages.
	DetailLinkPrefix string

	// DetailIDPattern extracts the member identifier from a roster link.
	// Its first capture group is the identifier.
	DetailIDPattern string

	// DetailURLTemplate builds the canonical detail URL; IDPlaceholder is
	// replaced by the identifier.
	DetailURLTemplate string
}

// DefaultSite returns the Assemblée nationale site definition.
func DefaultSite() Site {
	return Site{
		RosterURL:         DefaultRosterURL,
		BaseURL:           DefaultBaseURL,
		DetailLinkPrefix:  DefaultDetailLinkPrefix,
		DetailIDPattern:   DefaultDetailIDPattern,
		DetailURLTemplate: DefaultDetailURLTemplate,
	}
}

// compiledSite holds the parsed forms of a Site.
type compiledSite struct {
	Site
	base      *url.URL
	idPattern *regexp.Regexp
}

// compile validates s and parses its URL and pattern.
func (s Site) compile() (*compiledSite, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", ErrInvalidSite, s.BaseURL)
	}
	if s.DetailLinkPrefix == "" {
		return nil, fmt.Errorf("%w: empty detail link prefix", ErrInvalidSite)
	}
	re, err := regexp.Compile(s.DetailIDPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: detail id pattern: %w", ErrInvalidSite, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: detail id pattern %q has no capture group", ErrInvalidSite, s.DetailIDPattern)
	}
	if !strings.Contains(s.DetailURLTemplate, IDPlaceholder) {
		return nil, fmt.Errorf("%w: detail URL template %q lacks %s", ErrInvalidSite, s.DetailURLTemplate, IDPlaceholder)
	}
	return &compiledSite{Site: s, base: base, idPattern: re}, nil
}

// Validate reports whether s can be used by the extractors.
func (s Site) Validate() error {
	_, err := s.compile()
	return err
}
