package state

import (
	"context"
	"database/sql"
	"fmt"
)

const declarationColumns = `id, file_path, name, kind, qualifiers, container, line, col`

// Lookup returns every declaration of name across the index.
func (s *SQLiteStore) Lookup(ctx context.Context, name string) ([]*Declaration, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+declarationColumns+` FROM declarations WHERE name = ? ORDER BY file_path, line, col`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", name, err)
	}
	return scanDeclarations(rows)
}

// FileDeclarations returns the declarations of one file in source order.
func (s *SQLiteStore) FileDeclarations(ctx context.Context, path string) ([]*Declaration, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+declarationColumns+` FROM declarations WHERE file_path = ? ORDER BY line, col`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get declarations of %s: %w", path, err)
	}
	return scanDeclarations(rows)
}

func scanDeclarations(rows *sql.Rows) ([]*Declaration, error) {
	defer func() { _ = rows.Close() }()

	var out []*Declaration
	for rows.Next() {
		var d Declaration
		if err := rows.Scan(&d.ID, &d.Path, &d.Name, &d.Kind, &d.Qualifiers, &d.Container, &d.Line, &d.Column); err != nil {
			return nil, fmt.Errorf("failed to scan declaration: %w", err)
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read declarations: %w", err)
	}
	return out, nil
}
