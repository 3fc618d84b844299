package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/deputes/internal/model"
)

// RenderDiff renders the difference between two runs, one line per
// member prefixed with "+" (added), "-" (removed) or "~" (changed).
func RenderDiff(d model.Diff) string {
	if d.IsEmpty() {
		return "No changes."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d added, %d removed, %d changed\n", len(d.Added), len(d.Removed), len(d.Changed))
	for _, r := range d.Added {
		fmt.Fprintf(&b, "+ %s (%s)\n", r.Name, r.Region)
	}
	for _, r := range d.Removed {
		fmt.Fprintf(&b, "- %s (%s)\n", r.Name, r.Region)
	}
	for _, c := range d.Changed {
		fmt.Fprintf(&b, "~ %s (%s)\n", c.Name, c.Region)
		for _, f := range c.Fields {
			fmt.Fprintf(&b, "    %s: %q -> %q\n", f.Label(), c.Before.Value(f), c.After.Value(f))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// WriteDiff writes RenderDiff(d) followed by a newline.
func WriteDiff(w io.Writer, d model.Diff) error {
	_, err := fmt.Fprintln(w, RenderDiff(d))
	return err
}
