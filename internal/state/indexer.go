package state

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quill-lang/quill/pkg/frontend"
)

// IndexResult summarises one indexing run.
type IndexResult struct {
	RunID        string
	Files        int // files considered
	Changed      int // files parsed and saved
	Skipped      int // files whose content hash was unchanged
	Removed      int // index entries pruned
	Declarations int // declarations saved
	Errors       int // error diagnostics in changed files
}

// Indexer records parsed units in a store. Files whose content hash matches
// the stored one are not parsed again.
type Indexer struct {
	store  Store
	logger *slog.Logger
}

// NewIndexer returns an indexer writing to store.
func NewIndexer(store Store, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Indexer{store: store, logger: logger}
}

// Index parses the changed files among paths and saves their declarations.
// Paths are stored in absolute, cleaned form. With prune set, indexed files
// not in paths are removed.
func (ix *Indexer) Index(ctx context.Context, paths []string, prune bool, opts frontend.Options) (*IndexResult, error) {
	paths, err := absPaths(paths)
	if err != nil {
		return nil, err
	}
	run, err := ix.store.CreateRun(ctx)
	if err != nil {
		return nil, err
	}
	res := &IndexResult{RunID: run.ID, Files: len(paths)}

	err = ix.index(ctx, run.ID, paths, prune, opts, res)
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	if cerr := ix.store.CompleteRun(ctx, run.ID, res.Changed, res.Declarations, errMsg); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	ix.logger.Info("index updated",
		"run", res.RunID,
		"changed", res.Changed,
		"skipped", res.Skipped,
		"removed", res.Removed,
		"declarations", res.Declarations,
	)
	return res, nil
}

func (ix *Indexer) index(ctx context.Context, runID string, paths []string, prune bool, opts frontend.Options, res *IndexResult) error {
	var changed []string
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // paths come from the command line
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		stored, err := ix.store.GetContentHash(ctx, path)
		if err != nil {
			return err
		}
		if stored == frontend.Hash(data) {
			ix.logger.Debug("skipping unchanged file", "path", path)
			res.Skipped++
			continue
		}
		changed = append(changed, path)
	}

	units, err := frontend.ParseFiles(ctx, changed, opts)
	if err != nil {
		return err
	}
	for _, u := range units {
		decls := Declarations(u.Source.Path, frontend.Flatten(frontend.Symbols(u)))
		f := &File{
			Path:   u.Source.Path,
			Hash:   u.Hash(),
			Tokens: len(u.Tokens()),
			Errors: u.Diagnostics().ErrorCount(),
			RunID:  runID,
		}
		if err := ix.store.SaveFile(ctx, f, decls); err != nil {
			return err
		}
		res.Changed++
		res.Declarations += len(decls)
		res.Errors += f.Errors
	}

	if !prune {
		return nil
	}
	keep := make(map[string]bool, len(paths))
	for _, p := range paths {
		keep[p] = true
	}
	files, err := ix.store.ListFiles(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		if keep[f.Path] {
			continue
		}
		if err := ix.store.DeleteFile(ctx, f.Path); err != nil {
			return err
		}
		res.Removed++
	}
	return nil
}

// absPaths makes every path absolute and drops repeats, keeping the first
// occurrence.
func absPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out, nil
}

// Declarations converts symbols into index rows for path.
func Declarations(path string, syms []frontend.Symbol) []Declaration {
	out := make([]Declaration, 0, len(syms))
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		out = append(out, Declaration{
			Path:       path,
			Name:       s.Name,
			Kind:       s.Kind,
			Qualifiers: s.Qualifiers,
			Container:  s.Container,
			Line:       s.Line,
			Column:     s.Column,
		})
	}
	return out
}
