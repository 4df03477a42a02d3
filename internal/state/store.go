// Package state persists the declaration index in SQLite.
// It tracks indexing runs, the files each run saw and the declarations
// found in them, so lookups work without re-parsing the project.
package state

import (
	"context"
	"time"
)

// Run is one invocation of the indexer.
type Run struct {
	ID           string
	StartedAt    time.Time
	CompletedAt  *time.Time
	Files        int
	Declarations int
	Error        string
}

// File is an indexed source file.
type File struct {
	Path      string
	Hash      string
	Tokens    int
	Errors    int
	RunID     string
	IndexedAt time.Time
}

// Declaration is one declared name in an indexed file.
type Declaration struct {
	ID         int64
	Path       string
	Name       string
	Kind       string
	Qualifiers string
	Container  string
	Line       int
	Column     int
}

// Store is the index persistence interface.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(ctx context.Context) (*Run, error)
	CompleteRun(ctx context.Context, id string, files, decls int, errMsg string) error
	GetLatestRun(ctx context.Context) (*Run, error)

	GetContentHash(ctx context.Context, path string) (string, error)
	SaveFile(ctx context.Context, f *File, decls []Declaration) error
	DeleteFile(ctx context.Context, path string) error
	ListFiles(ctx context.Context) ([]*File, error)

	Lookup(ctx context.Context, name string) ([]*Declaration, error)
	FileDeclarations(ctx context.Context, path string) ([]*Declaration, error)
}
