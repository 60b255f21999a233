package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ErrInvalidRun is returned by Record for a run without an ID or log file.
var ErrInvalidRun = errors.New("history: run id and log file are required")

// Run is a single ingestion record.
type Run struct {
	// ID is the run identifier (a UUID), shared with sink tags and MQTT topics.
	ID string `json:"id"`

	// LogFile is the path of the ingested log as given on the command line.
	LogFile string `json:"log_file"`

	// StartedAt is the wall-clock time of the first sample in the log.
	StartedAt time.Time `json:"started_at"`

	// Samples is the number of data rows.
	Samples int `json:"samples"`

	// Columns is the number of columns after ingestion.
	Columns int `json:"columns"`

	// Families is the number of device families in the index.
	Families int `json:"families"`

	// Selected is the number of columns selected for rendering.
	Selected int `json:"selected"`

	// CreatedAt is when the run was recorded (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Repository stores runs in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a run repository on an open, migrated database.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *Repository: Repository instance ready for use
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts a run. CreatedAt is set by the database when zero.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - run: Run to persist
//
// Returns:
//   - error: ErrInvalidRun, or the underlying database error
func (r *Repository) Record(ctx context.Context, run Run) error {
	if run.ID == "" || run.LogFile == "" {
		return ErrInvalidRun
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, log_file, started_at, samples, columns, families, selected, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.LogFile,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.Samples,
		run.Columns,
		run.Families,
		run.Selected,
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// List returns recent runs, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Run: Runs ordered by created_at DESC (may be empty)
//   - error: nil on success, otherwise the underlying query error
func (r *Repository) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, log_file, started_at, samples, columns, families, selected, created_at
		 FROM runs
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		var startedAt, createdAt string

		if err := rows.Scan(&run.ID, &run.LogFile, &startedAt, &run.Samples,
			&run.Columns, &run.Families, &run.Selected, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		if run.StartedAt, err = parseTimestamp(startedAt); err != nil {
			return nil, fmt.Errorf("run %s started_at: %w", run.ID, err)
		}
		if run.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("run %s created_at: %w", run.ID, err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02 15:04:05", value)
	if fallbackErr == nil {
		return fallback.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("parsing timestamp: %w", err)
}
