package format

import (
	"bytes"

	"github.com/quill-lang/quill/pkg/source"
	"github.com/quill-lang/quill/pkg/token"
)

// printer re-emits a token stream line by line. Token text is copied from
// the source; only the whitespace between tokens is rewritten.
type printer struct {
	src      *source.File
	tabWidth int
	output   *bytes.Buffer

	atLineStart bool
	line        int // source line of the last token written, -1 before the first
	prev        token.Token
}

func newPrinter(src *source.File, tabWidth int) *printer {
	return &printer{
		src:         src,
		tabWidth:    tabWidth,
		output:      &bytes.Buffer{},
		atLineStart: true,
		line:        -1,
	}
}

// Bytes returns the formatted output with exactly one trailing newline, or
// nothing for a unit without tokens.
func (p *printer) Bytes() []byte {
	out := bytes.TrimRight(p.output.Bytes(), "\n")
	if len(out) == 0 {
		return nil
	}
	return append(out, '\n')
}

func (p *printer) write(b []byte) {
	p.output.Write(b)
	p.atLineStart = false
}

func (p *printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *printer) space() {
	p.output.WriteByte(' ')
}

func (p *printer) writeIndent(columns int) {
	for i := 0; i < columns; i++ {
		p.output.WriteByte(' ')
	}
}

// tokens prints every token of the unit. Indent tokens are dropped: the
// indentation of each line is recomputed from its leading whitespace.
func (p *printer) tokens(toks []token.Token) {
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == token.Indent || t.Kind == token.EOF {
			continue
		}
		line := int(t.Line)
		if line != p.line {
			p.startLine(line)
			if t.Kind == token.Dollar {
				// shell lines are copied verbatim
				p.write(bytes.TrimRight(p.src.Line(line)[t.Offset:], " \t"))
				for i+1 < len(toks) && int(toks[i+1].Line) == line {
					i++
				}
				continue
			}
		} else if spaced(p.prev.Kind, t.Kind, t.Offset > p.prev.End()) {
			p.space()
		}
		p.write(p.src.Text(t))
		p.prev = t
	}
}

// startLine ends the previous line, keeping at most one blank line, and
// writes the indentation of the source line.
func (p *printer) startLine(line int) {
	if p.line >= 0 {
		p.writeln()
		if line > p.line+1 {
			p.writeln()
		}
	}
	p.line = line
	p.writeIndent(p.columns(p.src.Line(line)))
}

// columns measures leading whitespace the way the lexer measures indentation.
func (p *printer) columns(line []byte) int {
	n := 0
	for _, c := range line {
		switch c {
		case ' ':
			n++
		case '\t':
			n += p.tabWidth
		case '\r', '\f', '\v':
		default:
			return n
		}
	}
	return n
}

// spaced decides whether a single space separates two tokens on one line.
// Brackets other than braces hug their contents, separators are followed by
// a space and never preceded by one; everything else keeps whether the
// source had whitespace, since the lexer reads meaning from it.
func spaced(prev, next token.Kind, hadSpace bool) bool {
	switch {
	case next.In(token.GroupComment):
		return hadSpace || !prev.In(token.GroupComment)
	case next.IsCloser() && next != token.RBrace:
		return false
	case next == token.Comma || next == token.Semicolon:
		return false
	case prev == token.Comma || prev == token.Semicolon:
		return true
	case prev.IsOpener() && prev != token.LBrace:
		return false
	}
	return hadSpace
}
