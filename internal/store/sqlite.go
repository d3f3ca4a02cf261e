package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmatos-dev/plantrack/internal/shared"
	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

// NewSQLite creates a new SQLite-backed store at dbPath. ":memory:" is
// accepted for tests.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	inMemory := strings.Contains(dbPath, ":memory:")
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// This driver only understands _pragma (and _txlock) query options, so
	// journal mode and busy timeout are spelled that way to apply on every
	// pooled connection. WAL for better concurrency; immediate transactions
	// so the completion rollup takes the write lock up front instead of
	// failing on upgrade.
	dsn := dbPath + "?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if inMemory {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, q: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sprints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sprint_number INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		name_en TEXT NOT NULL,
		description TEXT,
		weeks INTEGER NOT NULL,
		total_hours INTEGER NOT NULL,
		total_sessions INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		focus TEXT,
		color TEXT,
		status TEXT NOT NULL DEFAULT 'PLANNED',
		actual_hours REAL NOT NULL DEFAULT 0,
		completed_sessions INTEGER NOT NULL DEFAULT 0,
		completion_notes TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sprint_id INTEGER NOT NULL REFERENCES sprints(id),
		task_code TEXT NOT NULL UNIQUE,
		session_date TEXT NOT NULL,
		day_of_week TEXT NOT NULL,
		week_number INTEGER NOT NULL,
		planned_hours REAL NOT NULL,
		title TEXT NOT NULL,
		title_en TEXT,
		description TEXT,
		deliverables TEXT,
		validation_criteria TEXT,
		coverage_target TEXT,
		status TEXT NOT NULL DEFAULT 'PLANNED',
		actual_hours REAL,
		started_at INTEGER,
		completed_at INTEGER,
		completion_notes TEXT,
		blockers TEXT,
		prompt_template TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_session_date ON tasks(session_date);
	CREATE INDEX IF NOT EXISTS idx_tasks_sprint_status ON tasks(sprint_id, status);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

	CREATE TABLE IF NOT EXISTS task_notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL REFERENCES tasks(id),
		note_type TEXT NOT NULL DEFAULT 'INFO',
		content TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT 'developer',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_task_notes_task ON task_notes(task_id);

	CREATE TABLE IF NOT EXISTS task_executions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL REFERENCES tasks(id),
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		hours_spent REAL,
		prompt_used TEXT,
		response_summary TEXT,
		notes TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_task_executions_task ON task_executions(task_id);

	CREATE TABLE IF NOT EXISTS blocked_days (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		blocked_date TEXT NOT NULL UNIQUE,
		day_of_week TEXT NOT NULL,
		block_type TEXT NOT NULL,
		reason TEXT NOT NULL,
		hours_lost REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS sprint_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sprint_id INTEGER NOT NULL REFERENCES sprints(id),
		report_type TEXT NOT NULL,
		week_number INTEGER,
		generated_at INTEGER NOT NULL,
		summary_pt TEXT,
		summary_en TEXT,
		metrics_json TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sprint_reports_sprint ON sprint_reports(sprint_id, generated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Tasks returns the task collection.
func (s *SQLiteStore) Tasks() TaskStore { return (*taskStore)(s) }

// Sprints returns the sprint collection.
func (s *SQLiteStore) Sprints() SprintStore { return (*sprintStore)(s) }

// BlockedDays returns the blocked-day collection.
func (s *SQLiteStore) BlockedDays() BlockedDayStore { return (*blockedDayStore)(s) }

// Reports returns the sprint-report collection.
func (s *SQLiteStore) Reports() ReportStore { return (*reportStore)(s) }

// InTransaction runs fn inside a database transaction, retrying on SQLite
// lock contention. A nested call joins the enclosing transaction.
func (s *SQLiteStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.runTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			return err
		}
		delay := baseDelay * time.Duration(1<<i)
		slog.Debug("transaction hit SQLITE_BUSY, retrying", "attempt", i+1, "delay", delay)
		time.Sleep(delay)
	}
	return err
}

func (s *SQLiteStore) runTransaction(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txStore := &SQLiteStore{db: s.db, q: tx, tx: tx}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Warn("transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// dateStr renders a date the way it is stored (ISO calendar date).
func dateStr(t time.Time) string {
	return t.Format(time.DateOnly)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timeFromNull(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0).UTC()
	return &t
}

func floatFromNull(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
