package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

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
	CREATE TABLE IF NOT EXISTS sessions (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid          TEXT NOT NULL UNIQUE,
		total_rounds  INTEGER NOT NULL,
		phases        TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'started',
		started_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		completed_at  TEXT
	);

	CREATE TABLE IF NOT EXISTS phase_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id  INTEGER NOT NULL REFERENCES sessions(id),
		phase       TEXT NOT NULL,
		round       INTEGER NOT NULL,
		planned     INTEGER NOT NULL DEFAULT 0,
		elapsed     INTEGER NOT NULL DEFAULT 0,
		outcome     TEXT NOT NULL,
		ended_at    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_phase_log_session ON phase_log(session_id);
	CREATE INDEX IF NOT EXISTS idx_phase_log_ended   ON phase_log(ended_at);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('total_rounds',         '4'),
		('phases',               'focus,short_break'),
		('focus_duration',       '1500'),
		('short_break_duration', '300'),
		('long_break_duration',  '900'),
		('sound_id',             '4111002'),
		('sound_enabled',        'true'),
		('theme',                'dark'),
		('compact',              'false'),
		('show_welcome',         'true');
	`
	_, err := s.db.Exec(ddl)
	return err
}
