package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/deputes/internal/config"
	"github.com/nao1215/deputes/internal/database"
	"github.com/nao1215/deputes/internal/model"
	"github.com/nao1215/deputes/internal/report"
)

const timestampLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved runs and compare them",
		Long: `History reads the runs saved with 'deputes scrape --save'.

Without flags it lists the most recent runs. It can also print the members
of one run, or show which members appeared, disappeared or changed their
email, group or district between two runs.

Examples:
  # List the last 20 runs
  deputes history

  # Print the members of run 3 as a table
  deputes history --run 3 --table

  # Compare the latest two runs
  deputes history --diff

  # Compare the latest run with run 1
  deputes history --diff --with-run-id 1`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Number of runs to list (0 = all)")
	cmd.Flags().Int64P("run", "i", 0,
		"Print the members of the run with this ID")
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the latest run with the previous one")
	cmd.Flags().Int64("with-run-id", 0,
		"With --diff, compare the latest run with this run instead")
	cmd.Flags().StringP("fields", "f", "",
		"With --run, comma-separated output fields")
	cmd.Flags().Bool("table", false,
		"With --run, append a summary table")
	cmd.Flags().BoolP("json", "j", false,
		"With --run, output JSON")
	cmd.Flags().String("data-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	dataDir, err := flags.GetString("data-dir")
	if err != nil {
		return err
	}
	if dataDir == "" {
		dataDir = config.XDGDataDir()
	}

	runID, err := flags.GetInt64("run")
	if err != nil {
		return err
	}
	diff, err := flags.GetBool("diff")
	if err != nil {
		return err
	}
	withRunID, err := flags.GetInt64("with-run-id")
	if err != nil {
		return err
	}
	if runID > 0 && diff {
		return errors.New("--run and --diff cannot be used together")
	}
	if withRunID > 0 && !diff {
		return errors.New("--with-run-id requires --diff")
	}

	// Validate the field list before touching the database.
	fields := model.DefaultFields()
	if raw, _ := flags.GetString("fields"); raw != "" {
		if fields, err = model.ParseFields(raw); err != nil {
			return err
		}
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	store, err := database.Open(dataDir, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case diff:
		return diffRuns(ctx, out, store, withRunID)
	case runID > 0:
		table, err := flags.GetBool("table")
		if err != nil {
			return err
		}
		jsonOutput, err := flags.GetBool("json")
		if err != nil {
			return err
		}
		return showRun(ctx, out, store, runID, fields, table, jsonOutput)
	default:
		limit, err := flags.GetInt("limit")
		if err != nil {
			return err
		}
		return listRuns(ctx, out, store, limit)
	}
}

// listRuns prints one line per saved run.
func listRuns(ctx context.Context, out io.Writer, store *database.RunStore, limit int) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No saved runs found.")
		fmt.Fprintln(out, "\nUse 'deputes scrape --save' to save a run.")
		return nil
	}

	fmt.Fprintf(out, "Saved runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %-9s  %-9s  %s\n", "ID", "Started", "Members", "Complete", "Regions")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-6d  %-19s  %-9d  %-9d  %s\n",
			r.ID,
			r.StartedAt.Local().Format(timestampLayout),
			r.Records,
			r.Complete,
			strings.Join(r.Regions, ", "),
		)
		if len(r.Errors) > 0 {
			fmt.Fprintf(out, "          errors: %s\n", strings.Join(r.Errors, "; "))
		}
	}

	fmt.Fprintln(out, "\nUse 'deputes history --run <id>' to print the members of a run.")
	fmt.Fprintln(out, "Use 'deputes history --diff' to compare the latest two runs.")
	return nil
}

// showRun prints the stored records of one run.
func showRun(ctx context.Context, out io.Writer, store *database.RunStore, id int64, fields []model.Field, table, jsonOutput bool) error {
	records, err := store.GetRunRecords(ctx, id)
	if err != nil {
		return err
	}

	var w report.Writer
	if jsonOutput {
		w = report.NewJSONWriter(out, fields, report.WithPrettyPrint())
	} else {
		w = report.NewTextWriter(out, fields, report.Mode{Table: table}, report.WithTrailingNewline())
	}
	_, err = w.Write(records)
	return err
}

// diffRuns compares the latest run with the previous one, or with run
// against when it is positive.
func diffRuns(ctx context.Context, out io.Writer, store *database.RunStore, against int64) error {
	ids, err := store.LatestRunIDs(ctx, 2)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.New("no saved runs found")
	}

	newer := ids[0]
	older := against
	if older == 0 {
		if len(ids) < 2 {
			return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(ids))
		}
		older = ids[1]
	}
	if older == newer {
		return fmt.Errorf("run %d is the latest run; choose an earlier run", older)
	}

	before, err := store.GetRunRecords(ctx, older)
	if err != nil {
		return err
	}
	after, err := store.GetRunRecords(ctx, newer)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run %d -> run %d\n", older, newer)
	return report.WriteDiff(out, model.DiffRecords(before, after))
}
