package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Destination is where a report is written: a file or standard output.
type Destination struct {
	io.Writer
	file *os.File

	// Terminal is true for standard output.
	Terminal bool
}

// Open returns a Destination for path. An empty path or "-" selects
// standard output. Parent directories of path are created.
func Open(path string) (*Destination, error) {
	if path == "" || path == "-" {
		return &Destination{Writer: os.Stdout, Terminal: true}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports hold personal contact data; keep them owner-readable.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &Destination{Writer: f, file: f}, nil
}

// Close closes the underlying file. Standard output is left open.
func (d *Destination) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
