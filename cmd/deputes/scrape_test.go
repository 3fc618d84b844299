package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/deputes/internal/config"
	"github.com/nao1215/deputes/internal/crawler"
	"github.com/nao1215/deputes/internal/fetch"
	"github.com/nao1215/deputes/internal/model"
)

const testRoster = `<html><body>
<h2>Bretagne</h2>
<h4 class="departementTitre">Finistère (29)</h4>
<div><ul>
  <li><a href="/deputes/fiche/OMC_PA1">Mme Anne Dupont</a></li>
  <li><a href="/deputes/fiche/OMC_PA2">M. Jean Martin</a></li>
</ul></div>
<h2>Corse</h2>
<h4 class="departementTitre">Corse-du-Sud (2A)</h4>
<div><ul><li><a href="/deputes/fiche/OMC_PA3">M. Petru Santoni</a></li></ul></div>
</body></html>`

func testDetail(email, group, district string) string {
	return fmt.Sprintf(`<html><body>
<a class="h4 _colored link" href="/g">%s</a>
<div class="_mb-small _centered-text"><span class="_big">%s</span></div>
<a href="mailto:%s">Écrire</a>
</body></html>`, group, district, email)
}

// testServer serves the roster and the member pages. Unknown member
// pages return 404.
type testServer struct {
	*httptest.Server
	rosterHits atomic.Int32
	rosterDown bool
}

func newTestServer(t *testing.T, rosterDown bool) *testServer {
	t.Helper()

	details := map[string]string{
		"/dyn/deputes/PA1": testDetail("anne.dupont@an.fr", "Groupe A", "1re circonscription"),
		"/dyn/deputes/PA2": testDetail("jean.martin@an.fr", "Groupe B", "2e circonscription"),
	}

	ts := &testServer{rosterDown: rosterDown}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/regions" {
			ts.rosterHits.Add(1)
			if ts.rosterDown {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = io.WriteString(w, testRoster)
			return
		}
		body, ok := details[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// writeSiteConfig writes a configuration file pointing at ts.
func writeSiteConfig(t *testing.T, ts *testServer) string {
	t.Helper()

	content := fmt.Sprintf(`site:
  rosterUrl: %[1]s/regions
  baseUrl: %[1]s
  detailUrlTemplate: "%[1]s/dyn/deputes/{id}"
regions: [Bretagne]
retries: 1
timeout: 5
`, ts.URL)
	path := filepath.Join(t.TempDir(), "deputes.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func testConfig(ts *testServer, output string) *config.Config {
	cfg := config.NewConfig()
	cfg.RosterURL = ts.URL + "/regions"
	cfg.BaseURL = ts.URL
	cfg.DetailURLTemplate = ts.URL + "/dyn/deputes/" + crawler.IDPlaceholder
	cfg.Regions = []string{"Bretagne"}
	cfg.MaxAttempts = 1
	cfg.ReportFile = output
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// TestNewScrapeCmd tests the scrape command definition.
func TestNewScrapeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScrapeCmd()

	if cmd.Use != "scrape" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}

	flagsWithShort := map[string]string{
		"threads":  "w",
		"retries":  "r",
		"timeout":  "t",
		"fields":   "f",
		"output":   "o",
		"json":     "j",
		"markdown": "m",
		"config":   "c",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}

	for _, flag := range []string{"delay", "region", "barefields", "no-separator", "table", "sort", "log-format", "save", "data-dir"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag %q to exist", flag)
		}
	}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		defaults := map[string]string{
			"threads":    "1",
			"retries":    "3",
			"delay":      "0",
			"timeout":    "10",
			"sort":       "false",
			"log-format": "text",
		}
		for flag, want := range defaults {
			if got := cmd.Flags().Lookup(flag).DefValue; got != want {
				t.Errorf("flag %q: expected default %q, got %q", flag, want, got)
			}
		}
	})
}

// TestRunScrape tests a complete run against a local site.
func TestRunScrape(t *testing.T) {
	t.Parallel()

	t.Run("writes labelled records with separators", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, false)
		output := filepath.Join(t.TempDir(), "out", "deputes.txt")
		cfg := testConfig(ts, output)
		cfg.Workers = 1

		if err := runScrape(context.Background(), cfg, ts.Client(), discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sep := strings.Repeat("-", 40)
		want := strings.Join([]string{
			"Nom: Mme Anne Dupont",
			"Region: Bretagne",
			"Email: anne.dupont@an.fr",
			"Groupe: Groupe A",
			"Circonscription: 1re circonscription",
			sep,
			"Nom: M. Jean Martin",
			"Region: Bretagne",
			"Email: jean.martin@an.fr",
			"Groupe: Groupe B",
			"Circonscription: 2e circonscription",
			sep,
		}, "\n")
		if got := readFile(t, output); got != want {
			t.Errorf("output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("concurrent workers with sorted output", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, false)
		output := filepath.Join(t.TempDir(), "sorted.txt")
		cfg := testConfig(ts, output)
		cfg.Workers = 4
		cfg.Sort = true
		cfg.Fields = []model.Field{"nom", "email"}

		if err := runScrape(context.Background(), cfg, ts.Client(), discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sep := strings.Repeat("-", 40)
		want := strings.Join([]string{
			"Nom: M. Jean Martin",
			"Email: jean.martin@an.fr",
			sep,
			"Nom: Mme Anne Dupont",
			"Email: anne.dupont@an.fr",
			sep,
		}, "\n")
		if got := readFile(t, output); got != want {
			t.Errorf("output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("bare single field without separator", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, false)
		output := filepath.Join(t.TempDir(), "emails.txt")
		cfg := testConfig(ts, output)
		cfg.Fields = []model.Field{"email"}
		cfg.Bare = true
		cfg.NoSeparator = true

		if err := runScrape(context.Background(), cfg, ts.Client(), discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "anne.dupont@an.fr\njean.martin@an.fr"
		if got := readFile(t, output); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("missing detail page leaves fields empty", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, false)
		output := filepath.Join(t.TempDir(), "corse.txt")
		cfg := testConfig(ts, output)
		cfg.Regions = []string{"Corse"}
		cfg.Fields = []model.Field{"nom", "email"}

		if err := runScrape(context.Background(), cfg, ts.Client(), discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Nom: M. Petru Santoni\nEmail: \n" + strings.Repeat("-", 40)
		if got := readFile(t, output); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("roster is fetched once for several regions", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, false)
		output := filepath.Join(t.TempDir(), "all.json")
		cfg := testConfig(ts, output)
		cfg.Regions = []string{"Bretagne", "Corse"}
		cfg.JSONReport = true

		if err := runScrape(context.Background(), cfg, ts.Client(), discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hits := ts.rosterHits.Load(); hits != 1 {
			t.Errorf("expected 1 roster request, got %d", hits)
		}
		got := readFile(t, output)
		for _, name := range []string{"Mme Anne Dupont", "M. Jean Martin", "M. Petru Santoni"} {
			if !strings.Contains(got, name) {
				t.Errorf("expected JSON output to contain %q", name)
			}
		}
	})

	t.Run("unavailable roster fails the run", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, true)
		output := filepath.Join(t.TempDir(), "empty.txt")
		cfg := testConfig(ts, output)
		cfg.MaxAttempts = 2

		err := runScrape(context.Background(), cfg, ts.Client(), discardLogger())
		if !errors.Is(err, crawler.ErrRosterUnavailable) {
			t.Fatalf("expected ErrRosterUnavailable, got %v", err)
		}
		if !errors.Is(err, fetch.ErrExhaustedRetries) {
			t.Errorf("expected ErrExhaustedRetries in chain, got %v", err)
		}
		if hits := ts.rosterHits.Load(); hits != 2 {
			t.Errorf("expected 2 roster attempts, got %d", hits)
		}
		if got := readFile(t, output); got != "" {
			t.Errorf("expected empty output, got %q", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, false)
		cfg := testConfig(ts, filepath.Join(t.TempDir(), "cancelled.txt"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := runScrape(ctx, cfg, ts.Client(), discardLogger())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestScrapeCommand tests the scrape command through the root command.
func TestScrapeCommand(t *testing.T) {
	t.Parallel()

	t.Run("configuration file and flags", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, false)
		configPath := writeSiteConfig(t, ts)
		output := filepath.Join(t.TempDir(), "table.txt")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"scrape", "-c", configPath, "-f", "nom,groupe", "--table", "-w", "2", "-o", output})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := readFile(t, output)
		if !strings.Contains(got, "Groupe: Groupe B") {
			t.Errorf("expected group line, got %q", got)
		}
		if !strings.Contains(got, "\n\n=== TABLEAU RÉCAPITULATIF ===\n") {
			t.Errorf("expected table title, got %q", got)
		}
		if strings.Contains(got, "Email:") {
			t.Errorf("expected only selected fields, got %q", got)
		}
	})

	t.Run("sort and json logs", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, false)
		configPath := writeSiteConfig(t, ts)
		output := filepath.Join(t.TempDir(), "names.txt")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"scrape", "-c", configPath, "-f", "nom", "--barefields", "--no-separator",
			"-w", "4", "--sort", "--log-format", "json", "-o", output})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "M. Jean Martin\nMme Anne Dupont"
		if got := readFile(t, output); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("save and history", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, false)
		configPath := writeSiteConfig(t, ts)
		dataDir := t.TempDir()
		output := filepath.Join(t.TempDir(), "out.txt")

		for range 2 {
			cmd := NewRootCmd()
			cmd.SetArgs([]string{"scrape", "-c", configPath, "-o", output, "--save", "--data-dir", dataDir})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"history", "--data-dir", dataDir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Saved runs (2)") {
			t.Errorf("expected two saved runs, got %q", buf.String())
		}

		buf.Reset()
		cmd = NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"history", "--diff", "--data-dir", dataDir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "Run 1 -> run 2\nNo changes.\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
	})

	t.Run("missing explicit configuration file", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"scrape", "-c", filepath.Join(t.TempDir(), "missing.yaml")})
		err := cmd.Execute()
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid flag values", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			args []string
			want error
		}{
			{"zero threads", []string{"-w", "0"}, config.ErrInvalidWorkers},
			{"zero retries", []string{"-r", "0"}, config.ErrInvalidRetries},
			{"negative delay", []string{"--delay=-1"}, config.ErrInvalidDelay},
			{"zero timeout", []string{"-t", "0"}, config.ErrInvalidTimeout},
			{"unknown field", []string{"-f", "nom,age"}, config.ErrUnknownField},
			{"json and markdown", []string{"-j", "-m"}, config.ErrConflictingReportFormats},
			{"unknown log format", []string{"--log-format", "xml"}, config.ErrInvalidLogFormat},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				ts := newTestServer(t, false)
				configPath := writeSiteConfig(t, ts)

				cmd := NewRootCmd()
				cmd.SetArgs(append([]string{"scrape", "-c", configPath}, tt.args...))
				err := cmd.Execute()
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
				if ts.rosterHits.Load() != 0 {
					t.Error("expected no request for an invalid configuration")
				}
			})
		}
	})
}

// TestNewLogger tests the log format selection.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{format: config.LogFormatText, want: "level=WARN msg=\"roster slow\""},
		{format: config.LogFormatJSON, want: `"msg":"roster slow"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.LogFormat = tt.format

			var buf bytes.Buffer
			newLogger(cfg, &buf).Warn("roster slow")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, buf.String())
			}
		})
	}
}
