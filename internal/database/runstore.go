package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/deputes/internal/model"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "deputes.db"

// ErrRunNotFound is returned when no run has the requested identifier.
var ErrRunNotFound = errors.New("run not found")

// RunStore provides SQLite-based storage for runs and their records.
type RunStore struct {
	db     *sql.DB
	dbPath string
}

// Options configures RunStore behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the run store in dbDir.
func Open(dbDir string, opts Options) (*RunStore, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scrape with --save first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &RunStore{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *RunStore) Path() string {
	return s.dbPath
}

func (s *RunStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		regions TEXT NOT NULL,
		reference_count INTEGER NOT NULL DEFAULT 0,
		record_count INTEGER NOT NULL DEFAULT 0,
		complete_count INTEGER NOT NULL DEFAULT 0,
		errors TEXT,
		steps TEXT
	);

	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		region TEXT NOT NULL,
		email TEXT,
		political_group TEXT,
		district TEXT,
		source TEXT,
		UNIQUE(run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
	CREATE INDEX IF NOT EXISTS idx_records_name ON records(name, region);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores run and its records in one transaction and returns the
// new run identifier.
func (s *RunStore) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	regions, err := json.Marshal(run.Regions)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize regions: %w", err)
	}
	runErrors, err := json.Marshal(run.Errors)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize errors: %w", err)
	}
	steps, err := json.Marshal(run.PerformedSteps)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize steps: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, finished_at, regions, reference_count, record_count, complete_count, errors, steps)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		string(regions),
		len(run.References),
		len(run.Records),
		run.CompleteCount(),
		string(runErrors),
		string(steps),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO records (run_id, position, name, region, email, political_group, district, source)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range run.Records {
		if _, err := stmt.ExecContext(ctx, id, i,
			rec.Name, rec.Region,
			nullString(rec.Email), nullString(rec.Group), nullString(rec.District),
			rec.Source,
		); err != nil {
			return 0, fmt.Errorf("failed to insert record %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RunSummary is a stored run without its records.
type RunSummary struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Regions    []string
	References int
	Records    int
	Complete   int
	Errors     []string
	Steps      []string
}

const summaryColumns = `id, started_at, finished_at, regions, reference_count, record_count, complete_count, errors, steps`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (RunSummary, error) {
	var (
		sum                RunSummary
		started            string
		finished           sql.NullString
		regions            string
		runErrors, runStep sql.NullString
	)
	if err := row.Scan(&sum.ID, &started, &finished, &regions,
		&sum.References, &sum.Records, &sum.Complete, &runErrors, &runStep); err != nil {
		return RunSummary{}, err
	}
	sum.StartedAt = parseTimestamp(started)
	if finished.Valid {
		sum.FinishedAt = parseTimestamp(finished.String)
	}
	if err := json.Unmarshal([]byte(regions), &sum.Regions); err != nil {
		return RunSummary{}, fmt.Errorf("failed to parse regions: %w", err)
	}
	unmarshalList(runErrors, &sum.Errors)
	unmarshalList(runStep, &sum.Steps)
	return sum, nil
}

func unmarshalList(s sql.NullString, dst *[]string) {
	if !s.Valid || s.String == "" {
		return
	}
	if err := json.Unmarshal([]byte(s.String), dst); err != nil {
		*dst = nil
	}
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, sum)
	}
	return runs, rows.Err()
}

// GetRun returns the summary of run id, or ErrRunNotFound.
func (s *RunStore) GetRun(ctx context.Context, id int64) (*RunSummary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM runs WHERE id = ?`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &sum, nil
}

// GetRunRecords returns the records of run id in their stored order.
func (s *RunStore) GetRunRecords(ctx context.Context, id int64) ([]model.Record, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT name, region, email, political_group, district, source
	FROM records
	WHERE run_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		var (
			rec                    model.Record
			email, group, district sql.NullString
			source                 sql.NullString
		)
		if err := rows.Scan(&rec.Name, &rec.Region, &email, &group, &district, &source); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Email = stringPtr(email)
		rec.Group = stringPtr(group)
		rec.District = stringPtr(district)
		rec.Source = source.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestRunIDs returns the identifiers of the n most recent runs,
// newest first.
func (s *RunStore) LatestRunIDs(ctx context.Context, n int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list run ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, n)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func formatTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats are the formats parseTimestamp accepts, most specific first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
