package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultSQLiteFile is the database file name used by the sqlite backend.
const DefaultSQLiteFile = "todo.db"

type sqlitePreferences struct {
	db *sql.DB
}

// NewSQLitePreferences opens (or creates) a SQLite database at path holding a
// single preferences table.
func NewSQLitePreferences(path string) (Preferences, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening preferences database: %w", err)
	}
	// One connection keeps writes ordered and avoids SQLITE_BUSY within a process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS preferences (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating preferences table: %w", err)
	}
	return &sqlitePreferences{db: db}, nil
}

func (p *sqlitePreferences) Get(key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, true, nil
}

func (p *sqlitePreferences) Put(key, value string) error {
	_, err := p.db.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

func (p *sqlitePreferences) Close() error {
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("closing preferences database: %w", err)
	}
	return nil
}
