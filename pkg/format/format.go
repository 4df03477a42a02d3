// Package format rewrites Quill source with canonical spacing.
//
// Formatting works on the token stream rather than the syntax tree, so it
// accepts any unit that lexes cleanly, including one with syntax errors.
// Token text is preserved byte for byte; whitespace inside a line is
// normalised, trailing whitespace and runs of blank lines are removed, and
// tabs in indentation are expanded.
package format

import (
	"errors"
	"fmt"

	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/quill-lang/quill/pkg/token"
)

// ErrUnstable is returned when the formatted text would lex differently
// from its input. The input is left as it is.
var ErrUnstable = errors.New("formatting would change the token sequence")

// Source formats src. Units with lexical errors are not formatted.
func Source(src *source.File, opts lexer.Options) ([]byte, error) {
	opts = canonical(opts)
	lx := lexer.New(src, nil, opts)
	toks := lx.All()
	if err := lx.Diagnostics().Err(); err != nil {
		return nil, fmt.Errorf("cannot format %s: %w", src.Path, err)
	}

	p := newPrinter(src, opts.TabWidth)
	p.tokens(toks)
	out := p.Bytes()

	if err := verify(toks, source.New(src.Path, out), opts); err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	return out, nil
}

// String formats text held in memory.
func String(path, text string, opts lexer.Options) (string, error) {
	out, err := Source(source.NewString(path, text), opts)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func canonical(opts lexer.Options) lexer.Options {
	if opts.TabWidth <= 0 {
		opts.TabWidth = lexer.DefaultTabWidth
	}
	opts.KeepComments = true
	opts.SubTokens = false
	opts.MaxErrors = 0
	return opts
}

// verify re-lexes the output and compares kinds and indentation levels with
// the original stream.
func verify(want []token.Token, out *source.File, opts lexer.Options) error {
	got := lexer.New(out, nil, opts).All()
	if len(got) != len(want) {
		return fmt.Errorf("%w: %d tokens, expected %d", ErrUnstable, len(got), len(want))
	}
	for i := range want {
		w, g := want[i], got[i]
		if w.Kind != g.Kind || w.Level() != g.Level() {
			return fmt.Errorf("%w: token %d at %d:%d is %s, expected %s",
				ErrUnstable, i, g.Line+1, g.Offset+1, g.Kind, w.Kind)
		}
	}
	return nil
}
