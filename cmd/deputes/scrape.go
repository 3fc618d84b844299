package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/deputes/internal/config"
	"github.com/nao1215/deputes/internal/crawler"
	"github.com/nao1215/deputes/internal/database"
	"github.com/nao1215/deputes/internal/fetch"
	"github.com/nao1215/deputes/internal/log"
	"github.com/nao1215/deputes/internal/model"
	"github.com/nao1215/deputes/internal/pipeline"
	"github.com/nao1215/deputes/internal/report"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract members and their details",
		Long: `Scrape reads the roster page once, collects the members listed under each
requested region, then downloads every member page to extract the email
address, political group and electoral district.

Fields: nom, region, email, groupe, circonscription
(English aliases: name, group, district).

Examples:
  # All fields for the default regions
  deputes scrape

  # Emails only, one per line, for two regions, 8 downloads at a time
  deputes scrape --region Bretagne --region Corse -f email --barefields --no-separator -w 8

  # Names and groups with a summary table, written to a file
  deputes scrape -f nom,groupe --table -o deputes.txt

  # JSON output, saved for later comparison with 'deputes history --diff'
  deputes scrape --json --save

  # Eight workers with a stable, alphabetical output and JSON logs
  deputes scrape -w 8 --sort --log-format json`,
		Args: cobra.NoArgs,
		RunE: runScrapeCmd,
	}

	// Fetch behavior
	cmd.Flags().IntP("threads", "w", config.DefaultWorkers,
		"Concurrent member page downloads (1 = sequential)")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxAttempts,
		"Attempts per page")
	cmd.Flags().Float64("delay", config.DefaultDelay.Seconds(),
		"Delay in seconds between two attempts on the same page")
	cmd.Flags().Float64P("timeout", "t", config.DefaultTimeout.Seconds(),
		"Timeout in seconds of one attempt")

	// Selection
	cmd.Flags().StringSlice("region", nil,
		"Region heading to extract (repeatable; default: Ile-de-France, Provence-Alpes-Côte d'Azur)")
	cmd.Flags().StringP("fields", "f", "",
		"Comma-separated output fields (default: nom,region,email,groupe,circonscription)")

	// Output
	cmd.Flags().Bool("barefields", false,
		"Print values without their label")
	cmd.Flags().Bool("no-separator", false,
		"With --barefields and a single field, omit the dashed line between members")
	cmd.Flags().Bool("table", false,
		"Append a summary table")
	cmd.Flags().StringP("output", "o", "",
		"Write output to a file (creates directories if needed)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown table (mutually exclusive with --json)")
	cmd.Flags().Bool("sort", false,
		"Order members by name, then region (default: roster order, or completion order with -w > 1)")
	cmd.Flags().String("log-format", config.LogFormatText,
		"Log format on stderr: text or json")

	// Configuration and storage
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .deputes.yaml, then XDG config dir, then home)")
	cmd.Flags().Bool("save", false,
		"Save the run to the local database")
	cmd.Flags().String("data-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScrape(ctx, cfg, &http.Client{}, logger)
}

// newLogger returns the logger selected by the log format.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		return log.NewJSONLogger(w, cfg.Verbose)
	}
	return log.NewLogger(w, cfg.Verbose)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig layers defaults, the configuration file and the flags the
// user actually set.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("threads") {
		if cfg.Workers, err = flags.GetInt("threads"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("retries") {
		if cfg.MaxAttempts, err = flags.GetInt("retries"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("delay") {
		seconds, err := flags.GetFloat64("delay")
		if err != nil {
			return nil, err
		}
		cfg.Delay = config.Seconds(seconds)
	}
	if flags.Changed("timeout") {
		seconds, err := flags.GetFloat64("timeout")
		if err != nil {
			return nil, err
		}
		cfg.Timeout = config.Seconds(seconds)
	}
	if flags.Changed("region") {
		if cfg.Regions, err = flags.GetStringSlice("region"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("sort") {
		if cfg.Sort, err = flags.GetBool("sort"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("log-format") {
		if cfg.LogFormat, err = flags.GetString("log-format"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("fields") {
		raw, err := flags.GetString("fields")
		if err != nil {
			return nil, err
		}
		if cfg.Fields, err = model.ParseFields(raw); err != nil {
			return nil, err
		}
	}

	if cfg.Bare, err = flags.GetBool("barefields"); err != nil {
		return nil, err
	}
	if cfg.NoSeparator, err = flags.GetBool("no-separator"); err != nil {
		return nil, err
	}
	if cfg.Table, err = flags.GetBool("table"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	dataDir, err := flags.GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DBDir = dataDir
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// runScrape executes one run and writes its records.
// It fails only when the roster could not be read or the run was
// interrupted; members with missing details are still written.
func runScrape(ctx context.Context, cfg *config.Config, client *http.Client, logger *slog.Logger) error {
	logger.Info("starting scrape",
		"regions", cfg.Regions,
		"workers", cfg.Workers,
		"attempts", cfg.MaxAttempts,
		"save", cfg.SaveToDB,
	)

	fetcher := fetch.New(client,
		fetch.WithLogger(logger),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithHeaders(cfg.Headers),
	)

	lister, err := crawler.NewLister(fetcher, cfg.Site(), crawler.WithLogger(logger))
	if err != nil {
		return err
	}
	extractor, err := crawler.NewDetailExtractor(fetcher, cfg.Site(), crawler.WithLogger(logger))
	if err != nil {
		return err
	}

	params := cfg.Params()
	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewListStep(lister, params, pipeline.WithStepLogger(logger)),
		pipeline.NewExtractStep(
			pipeline.NewDispatcher(extractor,
				pipeline.WithWorkers(cfg.Workers),
				pipeline.WithDispatchLogger(logger),
			),
			params,
			pipeline.WithStepLogger(logger),
		),
	)

	if cfg.SaveToDB {
		store, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		logger.Info("database opened", "path", store.Path())
		p.AddStep(pipeline.NewPersistStep(store, pipeline.WithStepLogger(logger)))
	}

	logger.Info("pipeline ready", "steps", p.StepNames())

	run := model.NewRun(cfg.Regions)
	execErr := p.Execute(ctx, run)
	if cfg.Sort {
		model.SortRecords(run.Records)
	}

	if err := outputRecords(cfg, run.Records); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	switch {
	case execErr == nil:
		return nil
	case errors.Is(execErr, crawler.ErrRosterUnavailable):
		return fmt.Errorf("no member could be listed: %w", execErr)
	case errors.Is(execErr, context.Canceled):
		return execErr
	default:
		// Persisting is the only other step that can fail; the output is
		// already written.
		logger.Error("failed to save run", "error", execErr)
		return nil
	}
}

// newWriter returns the writer for the configured output format.
func newWriter(cfg *config.Config, dest *report.Destination) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(dest, cfg.Fields, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(dest, cfg.Fields)
	default:
		var opts []report.TextWriterOption
		if dest.Terminal {
			opts = append(opts, report.WithTrailingNewline())
		}
		mode := report.Mode{Bare: cfg.Bare, NoSeparator: cfg.NoSeparator, Table: cfg.Table}
		return report.NewTextWriter(dest, cfg.Fields, mode, opts...)
	}
}

// outputRecords writes records to the configured destination.
func outputRecords(cfg *config.Config, records []model.Record) error {
	dest, err := report.Open(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer dest.Close()

	if _, err := newWriter(cfg, dest).Write(records); err != nil {
		return err
	}
	return dest.Close()
}
