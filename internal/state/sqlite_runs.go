package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// CreateRun starts a new indexing run.
func (s *SQLiteStore) CreateRun(ctx context.Context) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run := &Run{ID: generateID(), StartedAt: time.Now().UTC()}
	s.logger.Debug("creating run", slog.String("id", run.ID))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		run.ID, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun records the outcome of a run.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, files, decls int, errMsg string) error {
	if s.db == nil {
		return errNotOpened
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET completed_at = ?, files = ?, declarations = ?, error = ? WHERE id = ?`,
		time.Now().UTC(), files, decls, nullString(errMsg), id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetLatestRun retrieves the most recent run, or nil when there is none.
func (s *SQLiteStore) GetLatestRun(ctx context.Context) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, completed_at, files, declarations, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)

	var (
		run       Run
		completed sql.NullTime
		errMsg    sql.NullString
	)
	err := row.Scan(&run.ID, &run.StartedAt, &completed, &run.Files, &run.Declarations, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No runs found, return nil without error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	if completed.Valid {
		run.CompletedAt = &completed.Time
	}
	run.Error = errMsg.String
	return &run, nil
}
