// Package frontend runs the lexer and parser over whole files.
//
// Every unit gets its own interner, lexer and parser, so units never share
// state and can be processed in parallel.
package frontend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/diag"
	"github.com/quill-lang/quill/pkg/intern"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/quill-lang/quill/pkg/token"
)

// Unit is one parsed source file.
type Unit struct {
	Source  *source.File
	File    *ast.File
	Parser  *parser.Parser
	Elapsed time.Duration
}

// Diagnostics returns the unit's lexical and syntax diagnostics.
func (u *Unit) Diagnostics() *diag.List { return u.Parser.Diagnostics() }

// Tokens returns the unit's token stream.
func (u *Unit) Tokens() []token.Token { return u.Parser.Lexer().Tokens() }

// Strings returns the unit's interner.
func (u *Unit) Strings() *intern.Interner { return u.Parser.Strings() }

// Lexer returns the unit's lexer.
func (u *Unit) Lexer() *lexer.Lexer { return u.Parser.Lexer() }

// Hash returns the content hash of the unit's bytes.
func (u *Unit) Hash() string { return Hash(u.Source.Data) }

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Parse lexes and parses src.
func Parse(src *source.File, opts parser.Options) *Unit {
	start := time.Now()
	p := parser.New(lexer.New(src, nil, opts.Lexer), opts)
	file := p.ParseFile()
	return &Unit{Source: src, File: file, Parser: p, Elapsed: time.Since(start)}
}

// ParseString parses text held in memory.
func ParseString(path, text string, opts parser.Options) *Unit {
	return Parse(source.NewString(path, text), opts)
}

// Options control ParseFiles.
type Options struct {
	Parser parser.Options
	Jobs   int // concurrent units; 0 means GOMAXPROCS
	Logger *slog.Logger
}

// ParseFiles reads and parses every path concurrently. Units are returned in
// the order of paths. A file that cannot be read cancels the remaining work;
// syntax errors never do.
func ParseFiles(ctx context.Context, paths []string, opts Options) ([]*Unit, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	units := make([]*Unit, len(paths))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)

	for i, path := range paths {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			src, err := source.Load(path)
			if err != nil {
				return err
			}
			u := Parse(src, opts.Parser)
			logger.Debug("parsed unit",
				"path", path,
				"tokens", len(u.Tokens()),
				"diagnostics", u.Diagnostics().Len(),
				"elapsed", u.Elapsed,
			)
			units[i] = u
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to parse files: %w", err)
	}
	return units, nil
}

// ErrorCount sums the error diagnostics of units.
func ErrorCount(units []*Unit) int {
	n := 0
	for _, u := range units {
		n += u.Diagnostics().ErrorCount()
	}
	return n
}
