package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// departmentClass marks department sub-headings on the roster page.
const departmentClass = "departementTitre"

var innerWhitespace = regexp.MustCompile(`\s+`)

// cleanText trims s and collapses inner whitespace runs to one space.
func cleanText(s string) string {
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// sameText compares heading texts after cleaning and NFC normalization,
// so composed and decomposed accents compare equal.
func sameText(a, b string) bool {
	return norm.NFC.String(cleanText(a)) == norm.NFC.String(cleanText(b))
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// isElement reports whether n is an element with the given tag.
func isElement(n *html.Node, a atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == a
}

// isRegionHeading reports whether n opens a region block.
func isRegionHeading(n *html.Node) bool {
	return isElement(n, atom.H2)
}

// isDepartmentHeading reports whether n opens a department block: an h4
// whose only class is departmentClass.
func isDepartmentHeading(n *html.Node) bool {
	if !isElement(n, atom.H4) {
		return false
	}
	classes := strings.Fields(getAttr(n, "class"))
	return len(classes) == 1 && classes[0] == departmentClass
}

// resolveURL resolves href against base. It returns "" for unparseable links.
func resolveURL(base *url.URL, href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
