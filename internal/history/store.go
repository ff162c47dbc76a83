package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/musare/musare-dl/internal/model"
	_ "modernc.org/sqlite"
)

// ErrNoRuns is returned when the ledger holds no runs yet.
var ErrNoRuns = errors.New("no runs recorded")

// RunSummary is a recorded run with its totals.
type RunSummary struct {
	model.Run
	FinishedAt  time.Time
	Attempted   int
	Completed   int
	Failed      int
	Cancelled   bool
	SourceError string
}

// Finished reports whether the run was closed.
func (r RunSummary) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Entry is one recorded song outcome.
type Entry struct {
	SongID     string
	Title      string
	Status     model.Status
	FileName   string
	Size       int64
	Stage      string
	Error      string
	Warnings   []string
	RecordedAt time.Time
}

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at path and applies
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("ensure history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun records the start of a batch.
func (s *Store) BeginRun(ctx context.Context, run model.Run) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, playlist, format, output_dir, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.Playlist,
		run.Format.String(),
		run.OutputDir,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordOutcome appends the terminal outcome of one song to a run.
func (s *Store) RecordOutcome(ctx context.Context, runID string, o model.Outcome) error {
	var errText string
	if o.Err != nil {
		errText = o.Err.Error()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO outcomes (
            run_id, song_id, title, status, file_name, size, stage, error, warnings, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		o.SongID,
		o.Title,
		string(o.Status),
		nullableString(o.FileName),
		o.Size,
		nullableString(o.Stage),
		nullableString(errText),
		nullableString(strings.Join(o.Warnings, "\n")),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert outcome %s: %w", o.SongID, err)
	}
	return nil
}

// FinishRun stores the totals of a finished batch.
func (s *Store) FinishRun(ctx context.Context, report *model.Report) error {
	var sourceErr string
	if report.SourceErr != nil {
		sourceErr = report.SourceErr.Error()
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ?, attempted = ?, completed = ?, failed = ?, cancelled = ?, source_error = ?
        WHERE id = ?`,
		formatTime(report.FinishedAt),
		report.Attempted,
		len(report.Completed),
		len(report.Failed),
		boolInt(report.Cancelled),
		nullableString(sourceErr),
		report.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run: unknown run %s", report.RunID)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, playlist, format, output_dir, started_at, finished_at,
            attempted, completed, failed, cancelled, source_error
        FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastRun returns the most recent run.
func (s *Store) LastRun(ctx context.Context) (RunSummary, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return RunSummary{}, err
	}
	if len(runs) == 0 {
		return RunSummary{}, ErrNoRuns
	}
	return runs[0], nil
}

// Entries returns the recorded outcomes of a run in processing order.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT song_id, title, status, file_name, size, stage, error, warnings, recorded_at
        FROM outcomes WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                                      Entry
			status, recordedAt                     string
			fileName, stage, errText, warningsText sql.NullString
		)
		if err := rows.Scan(&e.SongID, &e.Title, &status, &fileName, &e.Size, &stage, &errText, &warningsText, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		e.Status = model.Status(status)
		e.FileName = fileName.String
		e.Stage = stage.String
		e.Error = errText.String
		if warningsText.String != "" {
			e.Warnings = strings.Split(warningsText.String, "\n")
		}
		e.RecordedAt = parseTime(recordedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return entries, nil
}

func scanRun(rows *sql.Rows) (RunSummary, error) {
	var (
		run                     RunSummary
		format, startedAt       string
		finishedAt, sourceError sql.NullString
	)
	if err := rows.Scan(
		&run.ID, &run.Playlist, &format, &run.OutputDir, &startedAt, &finishedAt,
		&run.Attempted, &run.Completed, &run.Failed, &run.Cancelled, &sourceError,
	); err != nil {
		return RunSummary{}, fmt.Errorf("scan run: %w", err)
	}
	run.Format = model.Format(format)
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.SourceError = sourceError.String
	return run, nil
}

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
