package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/deputes/internal/fetch"
	"github.com/nao1215/deputes/internal/model"
)

// Lister discovers members on the roster page.
// It holds no mutable state and is safe for concurrent use.
type Lister struct {
	fetcher fetch.Getter
	site    *compiledSite
	logger  *slog.Logger
}

// NewLister creates a Lister for site using fetcher for HTTP.
func NewLister(fetcher fetch.Getter, site Site, opts ...Option) (*Lister, error) {
	cs, err := site.compile()
	if err != nil {
		return nil, err
	}
	s := newSettings(opts)
	return &Lister{fetcher: fetcher, site: cs, logger: s.logger}, nil
}

// List fetches the roster page once and returns the members of every
// requested region, region by region in the given order.
// When the page cannot be fetched it returns no references and an error
// wrapping ErrRosterUnavailable.
func (l *Lister) List(ctx context.Context, regions []string, p fetch.Params) ([]model.EntityReference, error) {
	l.logger.Debug("collecting members", "regions", regions, "url", l.site.RosterURL)

	var body []byte
	switch out := l.fetcher.Fetch(ctx, l.site.RosterURL, p).(type) {
	case fetch.Success:
		body = out.Body
	case fetch.Failure:
		l.logger.Warn("could not fetch roster page",
			"url", l.site.RosterURL,
			"attempts", out.Attempts,
			"error", out.Err,
		)
		return nil, fmt.Errorf("%w: %s: %w", ErrRosterUnavailable, l.site.RosterURL, out.Err)
	default:
		return nil, fmt.Errorf("%w: unexpected fetch outcome %T", ErrRosterUnavailable, out)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrRosterUnavailable, l.site.RosterURL, err)
	}

	refs := make([]model.EntityReference, 0)
	for _, region := range regions {
		found := walkRegion(doc, l.site, region)
		if len(found) == 0 {
			l.logger.Debug("no members found for region", "region", region)
		} else {
			l.logger.Debug("members found", "region", region, "count", len(found))
		}
		refs = append(refs, found...)
	}
	return refs, nil
}

// ParseRoster extracts the members of region from a roster page.
func ParseRoster(r io.Reader, site Site, region string) ([]model.EntityReference, error) {
	cs, err := site.compile()
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return walkRegion(doc, cs, region), nil
}

// walkState is the position of the roster walk relative to the region.
type walkState int

const (
	// beforeMatch skips siblings preceding the matched region heading.
	beforeMatch walkState = iota
	// inRegion is inside the region block but outside any department.
	inRegion
	// inDepartment follows a department heading; containers are scanned.
	inDepartment
	// done is reached at the next region heading.
	done
)

// walkRegion finds the first region heading whose text equals region and
// collects the member links of the departments that follow it, up to the
// next region heading.
func walkRegion(doc *goquery.Document, site *compiledSite, region string) []model.EntityReference {
	heading := findRegionHeading(doc, region)
	if heading == nil || heading.Parent == nil {
		return nil
	}

	c := newCollector(region)
	state := beforeMatch
	for n := heading.Parent.FirstChild; n != nil && state != done; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		switch state {
		case beforeMatch:
			if n == heading {
				state = inRegion
			}
		case inRegion, inDepartment:
			switch {
			case isRegionHeading(n):
				state = done
			case isDepartmentHeading(n):
				state = inDepartment
			case isElement(n, atom.H4):
				state = inRegion
			case state == inDepartment && isElement(n, atom.Div):
				collectMembers(doc.FindNodes(n), site, c)
			}
		}
	}
	return c.refs
}

// findRegionHeading returns the first region heading whose text equals region.
func findRegionHeading(doc *goquery.Document, region string) *html.Node {
	var found *html.Node
	doc.Find("h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if sameText(s.Text(), region) {
			found = s.Get(0)
			return false
		}
		return true
	})
	return found
}

// collectMembers adds every list item of container whose first link
// points to a member page.
func collectMembers(container *goquery.Selection, site *compiledSite, c *collector) {
	container.Find("li").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a[href]").First()
		href, ok := a.Attr("href")
		if !ok || !strings.HasPrefix(href, site.DetailLinkPrefix) {
			return
		}
		name := cleanText(a.Text())
		if name == "" {
			return
		}
		c.add(name, resolveURL(site.base, href))
	})
}

// collector accumulates references keyed by name. A repeated name keeps
// its first position and takes the latest link.
type collector struct {
	region string
	refs   []model.EntityReference
	index  map[string]int
}

func newCollector(region string) *collector {
	return &collector{
		region: region,
		refs:   make([]model.EntityReference, 0),
		index:  make(map[string]int),
	}
}

func (c *collector) add(name, detailRef string) {
	if i, ok := c.index[name]; ok {
		c.refs[i].DetailRef = detailRef
		return
	}
	c.index[name] = len(c.refs)
	c.refs = append(c.refs, model.EntityReference{
		Name:      name,
		DetailRef: detailRef,
		Region:    c.region,
	})
}
