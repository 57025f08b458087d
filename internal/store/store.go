package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		completed        INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		completed_at     TEXT,
		spent_pomodoros  INTEGER NOT NULL DEFAULT 0,
		position         INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS subtasks (
		id        TEXT PRIMARY KEY,
		task_id   TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		title     TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		position  INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_subtasks_task ON subtasks(task_id);

	CREATE TABLE IF NOT EXISTS notes (
		date    TEXT PRIMARY KEY,
		content TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS day_activity (
		date            TEXT PRIMARY KEY,
		pomodoros       INTEGER NOT NULL DEFAULT 0,
		completed_tasks INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('pomodoro_minutes', '25'),
		('short_break_secs', '300'),
		('long_break_secs',  '900'),
		('auto_assign',      '1'),
		('pause_lock',       '0'),
		('session_log_url',  '');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DateKey formats t as the canonical YYYY-MM-DD activity key in local time.
// Every writer of task dates, note dates and activity rows must go through
// this so that work near midnight lands on a single calendar day.
func DateKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// DefaultDBPath returns ~/.config/focal/focal.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "focal", "focal.db"), nil
}
