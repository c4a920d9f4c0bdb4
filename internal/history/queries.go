package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run operations

// InsertRun records a completed run and returns its ID. A run arriving
// without an ID is assigned a fresh UUID.
func (s *Store) InsertRun(run *Run) (string, error) {
	id := run.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO runs
		(id, profile, mode, started_at, duration_ms, expanded, removed, skipped, reclaimed_bytes, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		id,
		run.Profile,
		run.Mode,
		run.StartedAt.Format(time.RFC3339),
		run.Duration.Milliseconds(),
		run.Expanded,
		run.Removed,
		run.Skipped,
		run.Reclaimed,
		run.Errors,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	return id, nil
}

// GetRun retrieves a run by ID; a unique ID prefix is accepted the
// same way full IDs are.
func (s *Store) GetRun(id string) (*Run, error) {
	query := `
		SELECT id, profile, mode, started_at, duration_ms, expanded, removed, skipped, reclaimed_bytes, error_count
		FROM runs
		WHERE id = ? OR id LIKE ? || '%'
		ORDER BY started_at DESC
		LIMIT 2
	`

	rows, err := s.db.Query(query, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("run %s not found", id)
	case 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("run ID %s is ambiguous", id)
	}
}

// ListRuns returns recorded runs newest first. A non-positive limit
// returns everything.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, profile, mode, started_at, duration_ms, expanded, removed, skipped, reclaimed_bytes, error_count
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Removal operations

// InsertRemovals records the per-path outcomes of a run in one
// transaction.
func (s *Store) InsertRemovals(runID string, removals []Removal) error {
	if len(removals) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO removals (run_id, path, bytes, error) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare removal insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range removals {
		if _, err := stmt.Exec(runID, r.Path, r.Bytes, r.Error); err != nil {
			return fmt.Errorf("failed to insert removal %s: %w", r.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removals: %w", err)
	}
	return nil
}

// ListRemovals returns a run's removals in the order they happened.
func (s *Store) ListRemovals(runID string) ([]*Removal, error) {
	query := `
		SELECT run_id, path, bytes, error
		FROM removals
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list removals for run %s: %w", runID, err)
	}
	defer rows.Close()

	var removals []*Removal
	for rows.Next() {
		var r Removal
		if err := rows.Scan(&r.RunID, &r.Path, &r.Bytes, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan removal row: %w", err)
		}
		removals = append(removals, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating removals: %w", err)
	}

	return removals, nil
}

// Aggregates

// GetTotals aggregates every recorded run.
func (s *Store) GetTotals() (*Totals, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(removed), 0),
		       COALESCE(SUM(reclaimed_bytes), 0),
		       COALESCE(SUM(error_count), 0)
		FROM runs
	`

	var t Totals
	err := s.db.QueryRow(query).Scan(&t.Runs, &t.Removed, &t.Reclaimed, &t.Errors)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}
	return &t, nil
}

// GetProfileTotals aggregates runs per profile, most recently run
// first.
func (s *Store) GetProfileTotals() ([]*ProfileTotals, error) {
	query := `
		SELECT profile,
		       COUNT(*),
		       COALESCE(SUM(removed), 0),
		       COALESCE(SUM(reclaimed_bytes), 0),
		       MAX(started_at)
		FROM runs
		GROUP BY profile
		ORDER BY MAX(started_at) DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile totals: %w", err)
	}
	defer rows.Close()

	var totals []*ProfileTotals
	for rows.Next() {
		var t ProfileTotals
		var lastRun string

		if err := rows.Scan(&t.Profile, &t.Runs, &t.Removed, &t.Reclaimed, &lastRun); err != nil {
			return nil, fmt.Errorf("failed to scan profile totals row: %w", err)
		}

		t.LastRun, err = time.Parse(time.RFC3339, lastRun)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last run time for %s: %w", t.Profile, err)
		}

		totals = append(totals, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile totals: %w", err)
	}

	return totals, nil
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		var run Run
		var startedAt string
		var durationMS int64

		err := rows.Scan(
			&run.ID,
			&run.Profile,
			&run.Mode,
			&startedAt,
			&durationMS,
			&run.Expanded,
			&run.Removed,
			&run.Skipped,
			&run.Reclaimed,
			&run.Errors,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at for run %s: %w", run.ID, err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond

		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}
