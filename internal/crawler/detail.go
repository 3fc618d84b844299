package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/deputes/internal/fetch"
	"github.com/nao1215/deputes/internal/model"
)

// Selectors for the fields of a member page.
const (
	mailtoPrefix  = "mailto:"
	emailSelector = `a[href^="mailto:"]`
	groupSelector = "a.h4._colored.link"
	bigSpan       = "span._big"
)

// districtSelectors are tried in order. The site renders the district
// container either with a single dotted class token or with two tokens.
var districtSelectors = []string{
	`div[class~="_mb-small._centered-text"]`,
	"div._mb-small._centered-text",
}

// DetailFields are the optional fields parsed from a member page.
type DetailFields struct {
	Email    *string
	Group    *string
	District *string
}

// Missing returns an error listing each absent field, or nil.
// Every entry wraps ErrStructuralMismatch.
func (f DetailFields) Missing() error {
	var errs []error
	if f.Email == nil {
		errs = append(errs, fmt.Errorf("%w: email link", ErrStructuralMismatch))
	}
	if f.Group == nil {
		errs = append(errs, fmt.Errorf("%w: group label", ErrStructuralMismatch))
	}
	if f.District == nil {
		errs = append(errs, fmt.Errorf("%w: district container", ErrStructuralMismatch))
	}
	return errors.Join(errs...)
}

// DetailExtractor builds a model.Record from a member's detail page.
// It holds no mutable state and is safe for concurrent use.
type DetailExtractor struct {
	fetcher fetch.Getter
	site    *compiledSite
	logger  *slog.Logger
}

// NewDetailExtractor creates a DetailExtractor for site.
func NewDetailExtractor(fetcher fetch.Getter, site Site, opts ...Option) (*DetailExtractor, error) {
	cs, err := site.compile()
	if err != nil {
		return nil, err
	}
	s := newSettings(opts)
	return &DetailExtractor{fetcher: fetcher, site: cs, logger: s.logger}, nil
}

// DetailURL derives the canonical detail URL from a roster link.
func (d *DetailExtractor) DetailURL(detailRef string) (string, error) {
	m := d.site.idPattern.FindStringSubmatch(detailRef)
	if len(m) < 2 || m[1] == "" {
		return "", fmt.Errorf("%w: %s", ErrIdentifierNotFound, detailRef)
	}
	return strings.ReplaceAll(d.site.DetailURLTemplate, IDPlaceholder, url.PathEscape(m[1])), nil
}

// Extract returns the record for ref. It always returns a record; fields
// that could not be obtained are left nil.
func (d *DetailExtractor) Extract(ctx context.Context, ref model.EntityReference, p fetch.Params) model.Record {
	rec := model.NewRecord(ref)

	detailURL, err := d.DetailURL(ref.DetailRef)
	if err != nil {
		d.logger.Debug("skipping detail page", "name", ref.Name, "error", err)
		return rec
	}
	rec.Source = detailURL

	var body []byte
	switch out := d.fetcher.Fetch(ctx, detailURL, p).(type) {
	case fetch.Success:
		body = out.Body
	case fetch.Failure:
		d.logger.Info("could not fetch detail page",
			"name", ref.Name,
			"url", detailURL,
			"attempts", out.Attempts,
			"error", out.Err,
		)
		return rec
	default:
		return rec
	}

	fields, err := ParseDetail(bytes.NewReader(body))
	if err != nil {
		d.logger.Info("could not parse detail page", "name", ref.Name, "url", detailURL, "error", err)
		return rec
	}
	if missing := fields.Missing(); missing != nil {
		d.logger.Debug("incomplete detail page", "name", ref.Name, "url", detailURL, "error", missing)
	}

	rec.Email = fields.Email
	rec.Group = fields.Group
	rec.District = fields.District

	d.logger.Debug("member extracted",
		"name", rec.Name,
		"email", rec.Value(model.FieldEmail),
		"group", rec.Value(model.FieldGroup),
		"district", rec.Value(model.FieldDistrict),
	)
	return rec
}

// ParseDetail parses the optional fields of a member page. Each field is
// looked up independently; a missing node leaves only that field nil.
func ParseDetail(r io.Reader) (DetailFields, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return DetailFields{}, err
	}
	return DetailFields{
		Email:    parseEmail(doc),
		Group:    parseGroup(doc),
		District: parseDistrict(doc),
	}, nil
}

func parseEmail(doc *goquery.Document) *string {
	href, ok := doc.Find(emailSelector).First().Attr("href")
	if !ok {
		return nil
	}
	return model.StringPtr(strings.TrimPrefix(strings.TrimSpace(href), mailtoPrefix))
}

func parseGroup(doc *goquery.Document) *string {
	sel := doc.Find(groupSelector).First()
	if sel.Length() == 0 {
		return nil
	}
	return model.StringPtr(cleanText(sel.Text()))
}

func parseDistrict(doc *goquery.Document) *string {
	for _, selector := range districtSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		span := container.Find(bigSpan).First()
		if span.Length() == 0 {
			return nil
		}
		return model.StringPtr(cleanText(span.Text()))
	}
	return nil
}
