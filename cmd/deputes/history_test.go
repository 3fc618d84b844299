package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/deputes/internal/database"
	"github.com/nao1215/deputes/internal/model"
)

// seedRuns stores one run per record set and returns the data directory.
func seedRuns(t *testing.T, runs ...[]model.Record) string {
	t.Helper()

	dir := t.TempDir()
	store, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	for _, records := range runs {
		run := model.NewRun([]string{"Bretagne"})
		run.Records = records
		run.Finish()
		if _, err := store.SaveRun(context.Background(), run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
	return dir
}

func member(name, email, group string) model.Record {
	return model.Record{
		Name:   name,
		Region: "Bretagne",
		Email:  model.StringPtr(email),
		Group:  model.StringPtr(group),
	}
}

func runHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs(append([]string{"history"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

// TestNewHistoryCmd tests the history command definition.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	if cmd.Use != "history" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}
	for _, flag := range []string{"limit", "run", "diff", "with-run-id", "fields", "table", "json", "data-dir"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag %q to exist", flag)
		}
	}
}

// TestHistoryCommand tests listing, printing and comparing saved runs.
func TestHistoryCommand(t *testing.T) {
	t.Parallel()

	first := []model.Record{
		member("Anne Dupont", "anne@an.fr", "Groupe A"),
		member("Jean Martin", "jean@an.fr", "Groupe B"),
	}
	second := []model.Record{
		member("Anne Dupont", "anne@an.fr", "Groupe C"),
		member("Paul Durand", "paul@an.fr", "Groupe B"),
	}

	t.Run("lists runs newest first", func(t *testing.T) {
		t.Parallel()

		dir := seedRuns(t, first, second)
		out, err := runHistory(t, "--data-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Saved runs (2)") {
			t.Errorf("expected two runs, got %q", out)
		}
		newest, oldest := strings.Index(out, "\n  2 "), strings.Index(out, "\n  1 ")
		if newest < 0 || oldest < 0 || newest > oldest {
			t.Errorf("expected run 2 before run 1, got %q", out)
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		dir := seedRuns(t, first, second)
		out, err := runHistory(t, "--data-dir", dir, "-n", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Saved runs (1)") {
			t.Errorf("expected one run, got %q", out)
		}
	})

	t.Run("prints the members of a run", func(t *testing.T) {
		t.Parallel()

		dir := seedRuns(t, first)
		out, err := runHistory(t, "--data-dir", dir, "--run", "1", "-f", "nom,email")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sep := strings.Repeat("-", 40)
		want := "Nom: Anne Dupont\nEmail: anne@an.fr\n" + sep + "\nNom: Jean Martin\nEmail: jean@an.fr\n" + sep + "\n"
		if out != want {
			t.Errorf("expected %q, got %q", want, out)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()

		dir := seedRuns(t, first)
		_, err := runHistory(t, "--data-dir", dir, "--run", "9")
		if !errors.Is(err, database.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("compares the latest two runs", func(t *testing.T) {
		t.Parallel()

		dir := seedRuns(t, first, second)
		out, err := runHistory(t, "--data-dir", dir, "--diff")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Run 1 -> run 2",
			"1 added, 1 removed, 1 changed",
			"+ Paul Durand (Bretagne)",
			"- Jean Martin (Bretagne)",
			"~ Anne Dupont (Bretagne)",
			`Groupe: "Groupe A" -> "Groupe C"`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got %q", want, out)
			}
		}
	})

	t.Run("compares with a chosen run", func(t *testing.T) {
		t.Parallel()

		dir := seedRuns(t, first, second, second)
		out, err := runHistory(t, "--data-dir", dir, "--diff", "--with-run-id", "2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "Run 2 -> run 3\nNo changes.\n"; out != want {
			t.Errorf("expected %q, got %q", want, out)
		}
	})

	t.Run("diff needs two runs", func(t *testing.T) {
		t.Parallel()

		dir := seedRuns(t, first)
		if _, err := runHistory(t, "--data-dir", dir, "--diff"); err == nil {
			t.Error("expected error with a single run")
		}
	})

	t.Run("missing database", func(t *testing.T) {
		t.Parallel()

		if _, err := runHistory(t, "--data-dir", t.TempDir()); err == nil {
			t.Error("expected error without a database")
		}
	})

	t.Run("conflicting flags", func(t *testing.T) {
		t.Parallel()

		dir := seedRuns(t, first)
		if _, err := runHistory(t, "--data-dir", dir, "--diff", "--run", "1"); err == nil {
			t.Error("expected error for --diff with --run")
		}
		if _, err := runHistory(t, "--data-dir", dir, "--with-run-id", "1"); err == nil {
			t.Error("expected error for --with-run-id without --diff")
		}
	})
}
