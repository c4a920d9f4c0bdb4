// Package history persists clean runs to SQLite so past activity can
// be listed and aggregated.
package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store provides SQLite operations for run history.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the run-history database at dbPath and
// prepares the connection. Use ":memory:" for throwaway databases in
// tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection sidesteps SQLite's single-writer locking.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Removals reference runs, so referential integrity must be on. WAL
	// keeps readers from blocking the writer.
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates the runs and removals tables along with their
// indexes. Safe to call on an existing database.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
