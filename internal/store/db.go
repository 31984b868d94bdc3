package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the halflife SQLite database.
type DB struct {
	*sql.DB
	Path string
}

// DefaultDBPath returns the default database path: ~/.halflife/halflife.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".halflife", "halflife.db"), nil
}

// Open creates the directory for path if needed and opens the database there.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return open(path, 0)
}

// OpenMemory opens a private in-memory database. Every connection to
// :memory: is a separate database, so the pool is pinned to one.
func OpenMemory() (*DB, error) {
	return open(":memory:", 1)
}

// open connects, applies pragmas and brings the schema up to date. A
// maxConns of zero leaves the pool unbounded.
func open(path string, maxConns int) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}

	db := &DB{DB: sqlDB, Path: path}
	for _, step := range []func() error{db.configurePragmas, db.migrate} {
		if err := step(); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}
	return db, nil
}

// pragmas tune SQLite for a single local writer.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

func (db *DB) configurePragmas() error {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}
