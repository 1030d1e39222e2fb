// Package history provides SQLite-backed persistence for finished focus runs
// and end-of-day summaries. It is the long-term record behind the ephemeral
// session state file.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/felixgeelhaar/dayflow/internal/planner"
)

// FocusRun is one finished (or skipped) task from a focus session.
type FocusRun struct {
	ID              string
	Date            string
	Task            string
	ScheduledTime   string
	DurationSeconds int
	FocusedSeconds  int
	Status          string
	CreatedAt       time.Time
}

// Run status values.
const (
	RunCompleted = "completed"
	RunSkipped   = "skipped"
)

// DayStats aggregates one day's focus runs.
type DayStats struct {
	Date           string
	Completed      int
	Skipped        int
	FocusedSeconds int
}

// Store provides SQLite-backed persistence for focus history.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they
// don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS focus_runs (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		task TEXT NOT NULL,
		scheduled_time TEXT NOT NULL DEFAULT '',
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		focused_seconds INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_focus_runs_date ON focus_runs(date);

	CREATE TABLE IF NOT EXISTS day_summaries (
		date TEXT PRIMARY KEY,
		accomplishments TEXT NOT NULL,
		learnings TEXT NOT NULL,
		suggestions TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordRun persists one finished or skipped task.
func (s *Store) RecordRun(run *FocusRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO focus_runs (id, date, task, scheduled_time, duration_seconds, focused_seconds, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Date, run.Task, run.ScheduledTime, run.DurationSeconds, run.FocusedSeconds, run.Status, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert focus run: %w", err)
	}

	return nil
}

// RunsForDate returns a day's runs in the order they finished.
func (s *Store) RunsForDate(date string) ([]FocusRun, error) {
	rows, err := s.db.Query(
		`SELECT id, date, task, scheduled_time, duration_seconds, focused_seconds, status, created_at
		 FROM focus_runs
		 WHERE date = ?
		 ORDER BY created_at ASC`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("query focus runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []FocusRun
	for rows.Next() {
		var run FocusRun
		if err := rows.Scan(&run.ID, &run.Date, &run.Task, &run.ScheduledTime, &run.DurationSeconds, &run.FocusedSeconds, &run.Status, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan focus run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return runs, nil
}

// StatsForDate aggregates a day's completion counts and focused time.
func (s *Store) StatsForDate(date string) (*DayStats, error) {
	row := s.db.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(focused_seconds), 0)
		 FROM focus_runs
		 WHERE date = ?`,
		RunCompleted, RunSkipped, date,
	)

	stats := DayStats{Date: date}
	if err := row.Scan(&stats.Completed, &stats.Skipped, &stats.FocusedSeconds); err != nil {
		return nil, fmt.Errorf("scan day stats: %w", err)
	}

	return &stats, nil
}

// SaveSummary upserts the end-of-day summary for a date.
func (s *Store) SaveSummary(date string, summary *planner.DaySummary) error {
	accomplishments, err := json.Marshal(summary.Accomplishments)
	if err != nil {
		return fmt.Errorf("marshal accomplishments: %w", err)
	}
	learnings, err := json.Marshal(summary.Learnings)
	if err != nil {
		return fmt.Errorf("marshal learnings: %w", err)
	}
	suggestions, err := json.Marshal(summary.Suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO day_summaries (date, accomplishments, learnings, suggestions, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   accomplishments = excluded.accomplishments,
		   learnings = excluded.learnings,
		   suggestions = excluded.suggestions,
		   created_at = excluded.created_at`,
		date, string(accomplishments), string(learnings), string(suggestions), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert day summary: %w", err)
	}

	return nil
}

// SummaryForDate returns the saved summary, or nil when none exists.
func (s *Store) SummaryForDate(date string) (*planner.DaySummary, error) {
	row := s.db.QueryRow(
		`SELECT accomplishments, learnings, suggestions
		 FROM day_summaries WHERE date = ?`,
		date,
	)

	var accomplishments, learnings, suggestions string
	err := row.Scan(&accomplishments, &learnings, &suggestions)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan day summary: %w", err)
	}

	var summary planner.DaySummary
	if err := json.Unmarshal([]byte(accomplishments), &summary.Accomplishments); err != nil {
		return nil, fmt.Errorf("unmarshal accomplishments: %w", err)
	}
	if err := json.Unmarshal([]byte(learnings), &summary.Learnings); err != nil {
		return nil, fmt.Errorf("unmarshal learnings: %w", err)
	}
	if err := json.Unmarshal([]byte(suggestions), &summary.Suggestions); err != nil {
		return nil, fmt.Errorf("unmarshal suggestions: %w", err)
	}

	return &summary, nil
}
