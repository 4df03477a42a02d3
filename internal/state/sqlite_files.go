package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// GetContentHash retrieves the content hash recorded for a file path.
func (s *SQLiteStore) GetContentHash(ctx context.Context, path string) (string, error) {
	if s.db == nil {
		return "", errNotOpened
	}

	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT content_hash FROM files WHERE path = ?`, path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil // Not found, return empty string
	}
	if err != nil {
		return "", fmt.Errorf("failed to get content hash: %w", err)
	}
	return hash, nil
}

// SaveFile records f and replaces its declarations in one transaction.
func (s *SQLiteStore) SaveFile(ctx context.Context, f *File, decls []Declaration) error {
	if s.db == nil {
		return errNotOpened
	}
	if f.IndexedAt.IsZero() {
		f.IndexedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO files (path, content_hash, tokens, errors, run_id, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   tokens = excluded.tokens,
		   errors = excluded.errors,
		   run_id = excluded.run_id,
		   indexed_at = excluded.indexed_at`,
		f.Path, f.Hash, f.Tokens, f.Errors, nullString(f.RunID), f.IndexedAt)
	if err != nil {
		return fmt.Errorf("failed to save file %s: %w", f.Path, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM declarations WHERE file_path = ?`, f.Path); err != nil {
		return fmt.Errorf("failed to clear declarations of %s: %w", f.Path, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO declarations (file_path, name, kind, qualifiers, container, line, col)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare declaration insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range decls {
		if _, err := stmt.ExecContext(ctx, f.Path, d.Name, d.Kind, d.Qualifiers, d.Container, d.Line, d.Column); err != nil {
			return fmt.Errorf("failed to save declaration %s: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Debug("indexed file", slog.String("path", f.Path), slog.Int("declarations", len(decls)))
	return nil
}

// DeleteFile removes a file and its declarations.
func (s *SQLiteStore) DeleteFile(ctx context.Context, path string) error {
	if s.db == nil {
		return errNotOpened
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// ListFiles returns every indexed file ordered by path.
func (s *SQLiteStore) ListFiles(ctx context.Context) ([]*File, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, content_hash, tokens, errors, run_id, indexed_at FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []*File
	for rows.Next() {
		var (
			f     File
			runID sql.NullString
		)
		if err := rows.Scan(&f.Path, &f.Hash, &f.Tokens, &f.Errors, &runID, &f.IndexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.RunID = runID.String
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}
