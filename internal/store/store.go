// Package store persists query diagnostics — provider failures and
// resolved fixes — in a local SQLite database.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS provider_failures (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	query_id   TEXT NOT NULL,
	code       TEXT NOT NULL,
	message    TEXT NOT NULL,
	at_unix_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fixes (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	query_id         TEXT NOT NULL,
	lat              REAL NOT NULL,
	lon              REAL NOT NULL,
	accuracy_m       REAL NOT NULL,
	sample_unix_ms   INTEGER NOT NULL,
	resolved_unix_ms INTEGER NOT NULL,
	outcome          TEXT NOT NULL
);
`

// Open creates a Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying handle for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Diagnostics returns the diagnostics repository backed by this store.
func (s *Store) Diagnostics() *DiagnosticsRepo {
	return &DiagnosticsRepo{db: s.db}
}

// applyPragmas configures SQLite for single-user local use.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. GEOFIX_DB environment variable
// 2. $XDG_DATA_HOME/geofix/geofix.db
// 3. ~/.local/share/geofix/geofix.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("GEOFIX_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "geofix", "geofix.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
