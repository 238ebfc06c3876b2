// Package history records completed scrape runs in a per-output-directory
// SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded scrape of a site.
type Run struct {
	RunID      uuid.UUID `json:"run_id"`
	BaseURL    string    `json:"base_url"`
	Writer     string    `json:"writer"`
	Mode       string    `json:"mode"`
	Scraped    int       `json:"scraped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns the wall time the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunStore persists scrape runs using SQLite.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (creating if needed) the run database at dbPath.
func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &RunStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates the runs table if it doesn't exist.
func (s *RunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		base_url TEXT NOT NULL,
		writer TEXT NOT NULL,
		mode TEXT NOT NULL,
		scraped INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// RecordRun stores a completed run and returns it with its assigned ID.
func (s *RunStore) RecordRun(baseURL, writer, mode string, scraped int, startedAt, finishedAt time.Time) (*Run, error) {
	run := &Run{
		RunID:      uuid.New(),
		BaseURL:    baseURL,
		Writer:     writer,
		Mode:       mode,
		Scraped:    scraped,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	query := `
		INSERT INTO runs (run_id, base_url, writer, mode, scraped, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.RunID.String(),
		run.BaseURL,
		run.Writer,
		run.Mode,
		run.Scraped,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs most recent first, up to limit (0 means all).
func (s *RunStore) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, base_url, writer, mode, scraped, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			idStr, startedStr, finishedStr string
			run                            Run
		)
		if err := rows.Scan(&idStr, &run.BaseURL, &run.Writer, &run.Mode, &run.Scraped, &startedStr, &finishedStr); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.RunID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid run_id %q: %w", idStr, err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedStr)
		if err != nil {
			return nil, fmt.Errorf("invalid started_at %q: %w", startedStr, err)
		}
		run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedStr)
		if err != nil {
			return nil, fmt.Errorf("invalid finished_at %q: %w", finishedStr, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}
