// Package lexer turns Quill source into a compact token stream.
//
// The scanner works a line at a time. It keeps a stack of nesting contexts
// and the current indentation, and uses them together with surrounding
// whitespace to resolve the overloaded characters '*', '&', '?', '!' and '<'.
// Tokens are produced on demand, so a parser can pull them one at a time and
// rewind through checkpoints.
package lexer

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/quill-lang/quill/pkg/diag"
	"github.com/quill-lang/quill/pkg/intern"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/quill-lang/quill/pkg/token"
)

// DefaultTabWidth is the indentation a tab counts for when none is configured.
const DefaultTabWidth = 4

// Options control scanning.
type Options struct {
	TabWidth     int  // indentation counted per tab; 0 means DefaultTabWidth
	SubTokens    bool // emit NumberSuffix and Unit tokens after each Number
	KeepComments bool // emit Comment and DocComment tokens
	MaxTokens    int  // stop with a resource error after this many tokens; 0 means no cap
	MaxErrors    int  // cap on error diagnostics kept; 0 means no cap
}

// Lexer scans one source unit.
type Lexer struct {
	src  *source.File
	strs *intern.Interner
	opts Options

	toks  []token.Token
	diags *diag.List

	line        int    // current line index
	pos         int    // byte offset within cur
	cur         []byte // current line without terminator
	atLineStart bool

	indent     int
	prevIndent int
	stack      []Frame
	typeDepth  int // depth at which the type context was entered, -1 outside

	lineHead  token.Kind // first token of the current line
	headKnown bool

	done bool
}

// New returns a lexer over src. strs must be preloaded with the builtin
// spellings (see NewStrings); a nil or empty interner is preloaded here.
func New(src *source.File, strs *intern.Interner, opts Options) *Lexer {
	if strs == nil {
		strs = NewStrings()
	} else if strs.Len() == 0 {
		preload(strs)
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultTabWidth
	}
	l := &Lexer{
		src:         src,
		strs:        strs,
		opts:        opts,
		diags:       &diag.List{Limit: opts.MaxErrors},
		stack:       []Frame{{Kind: ContextTop, Opener: -1}},
		typeDepth:   -1,
		atLineStart: true,
	}
	l.cur = src.Line(0)
	return l
}

// Source returns the unit being scanned.
func (l *Lexer) Source() *source.File { return l.src }

// Strings returns the interner holding token values.
func (l *Lexer) Strings() *intern.Interner { return l.strs }

// Diagnostics returns the unit's diagnostics. The parser records its own
// diagnostics in the same list so checkpoints cover both.
func (l *Lexer) Diagnostics() *diag.List { return l.diags }

// Tokens returns the tokens produced so far.
func (l *Lexer) Tokens() []token.Token { return l.toks }

// Len returns the number of tokens produced so far.
func (l *Lexer) Len() int { return len(l.toks) }

// Done reports whether the EOF token has been produced.
func (l *Lexer) Done() bool { return l.done }

// Indent returns the indentation level of the current line.
func (l *Lexer) Indent() int { return l.indent }

// PrevIndent returns the indentation level of the previous non-blank line.
func (l *Lexer) PrevIndent() int { return l.prevIndent }

// Next scans until at least one more token exists and returns the index of
// the first new token. It reports false once EOF has already been produced.
func (l *Lexer) Next() (int, bool) {
	if l.done {
		return len(l.toks) - 1, false
	}
	n := len(l.toks)
	for len(l.toks) == n && !l.done {
		l.scan()
	}
	return n, true
}

// All scans to the end of input and returns every token.
func (l *Lexer) All() []token.Token {
	for !l.done {
		l.scan()
	}
	return l.toks
}

// Token returns token i, scanning forward as needed. Past the end it returns
// the EOF token.
func (l *Lexer) Token(i int) token.Token {
	for i >= len(l.toks) && !l.done {
		l.scan()
	}
	if i >= len(l.toks) {
		return l.toks[len(l.toks)-1]
	}
	return l.toks[i]
}

// Text returns the source text of token i.
func (l *Lexer) Text(i int) string {
	return string(l.src.Text(l.Token(i)))
}

// Name returns the interned string of token i, or "" when it has none.
func (l *Lexer) Name(i int) string {
	t := l.Token(i)
	if !t.HasString() {
		return ""
	}
	return l.strs.String(t.Value)
}

func (l *Lexer) at(p int) byte {
	if p < 0 || p >= len(l.cur) {
		return 0
	}
	return l.cur[p]
}

func (l *Lexer) peek() byte {
	return l.at(l.pos + 1)
}

func (l *Lexer) runeAt(p int) (rune, int) {
	if p >= len(l.cur) {
		return 0, 0
	}
	if c := l.cur[p]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRune(l.cur[p:])
}

// scan produces zero or more tokens, advancing at least one step.
func (l *Lexer) scan() {
	if l.done {
		return
	}
	if l.opts.MaxTokens > 0 && len(l.toks) >= l.opts.MaxTokens {
		l.diags.Errorf(diag.Resource, len(l.toks)-1, l.last(), ErrTokenLimit, l.opts.MaxTokens)
		l.finish(false)
		return
	}
	if l.line >= l.src.LineCount() {
		l.finish(true)
		return
	}
	if l.atLineStart {
		l.startLine()
		return
	}

	l.skipSpace()
	if l.pos >= len(l.cur) {
		l.endLine()
		return
	}
	if l.top().Kind == ContextShell {
		l.scanShellWord()
		return
	}

	c := l.cur[l.pos]
	switch {
	case c == '/' && l.peek() == '/':
		l.scanComment()
	case isDigit(c):
		l.scanNumber()
	case (c == '-' || c == '+') && isDigit(l.peek()) && !l.prevIsValue():
		l.scanNumber()
	case c == '"' || c == '\'':
		l.scanString()
	case c == '_' || isLetter(c):
		l.scanIdentifier()
	case c >= utf8.RuneSelf:
		r, n := l.runeAt(l.pos)
		switch {
		case r == utf8.RuneError && n <= 1:
			l.illegal(1, ErrInvalidUTF8)
		case unicode.IsLetter(r):
			l.scanIdentifier()
		default:
			l.illegal(n, ErrIllegalChar, r)
		}
	default:
		l.scanOperator()
	}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.cur) {
		switch l.cur[l.pos] {
		case ' ', '\t', '\r', '\f', '\v':
			l.pos++
		default:
			return
		}
	}
}

// startLine measures indentation and emits an Indent token for lines inside
// an indentation-sensitive context. Blank and comment-only lines emit none.
func (l *Lexer) startLine() {
	l.atLineStart = false
	l.headKnown = false
	if !l.indentSensitive() {
		return
	}

	level, p := 0, 0
measure:
	for ; p < len(l.cur); p++ {
		switch l.cur[p] {
		case ' ':
			level++
		case '\t':
			level += l.opts.TabWidth
		case '\r', '\f', '\v':
		default:
			break measure
		}
	}
	if p >= len(l.cur) || (l.cur[p] == '/' && l.at(p+1) == '/') {
		return
	}
	if level > int(token.NoValue)-1 {
		level = int(token.NoValue) - 1
	}

	l.prevIndent = l.indent
	l.indent = level
	size := p
	if size > token.MaxSize {
		size = token.MaxSize
	}
	l.toks = append(l.toks, token.Token{
		Kind:   token.Indent,
		Size:   uint8(size),
		Value:  uint16(level),
		Line:   uint32(l.line),
		Offset: 0,
	})
}

func (l *Lexer) endLine() {
	l.closeLine()
	l.line++
	l.pos = 0
	l.atLineStart = true
	l.cur = l.src.Line(l.line)
}

// finish emits EOF. When checkOpen is set every context still open is a
// terminal error reported at its opener.
func (l *Lexer) finish(checkOpen bool) {
	if checkOpen {
		l.closeLine()
		for i := len(l.stack) - 1; i > 0; i-- {
			f := l.stack[i]
			l.diags.Errorf(diag.Lexical, f.Opener, l.toks[f.Opener], ErrUnclosed, f.Kind)
		}
	}

	last := l.src.LineCount() - 1
	if last < 0 {
		last = 0
	}
	l.toks = append(l.toks, token.Token{
		Kind:   token.EOF,
		Value:  token.NoValue,
		Line:   uint32(last),
		Offset: uint32(len(l.src.Line(last))),
	})
	l.done = true
}

// abort truncates the scan after a hard error.
func (l *Lexer) abort() {
	l.finish(false)
}

// emit appends a token covering [start, end) of the current line.
func (l *Lexer) emit(kind token.Kind, start, end int, value uint16) int {
	size := end - start
	idx := len(l.toks)
	t := token.Token{
		Kind:   kind,
		Value:  value,
		Line:   uint32(l.line),
		Offset: uint32(start),
	}
	if size > token.MaxSize {
		t.Size = token.MaxSize
		l.toks = append(l.toks, t)
		l.errorAt(idx, ErrTokenTooLong)
	} else {
		t.Size = uint8(size)
		l.toks = append(l.toks, t)
	}
	if !l.headKnown && !kind.In(token.GroupComment) {
		l.lineHead = kind
		l.headKnown = true
	}
	return idx
}

// emitOp emits an n-byte operator at the cursor and advances past it.
func (l *Lexer) emitOp(kind token.Kind, n int) int {
	idx := l.emit(kind, l.pos, l.pos+n, token.NoValue)
	l.pos += n
	return idx
}

// intern stores b and reports a resource error when the interner refuses it.
func (l *Lexer) intern(b []byte, idx int, at token.Token) uint16 {
	id, err := l.strs.Insert(b)
	switch {
	case err == nil:
		return id
	case errors.Is(err, intern.ErrTooManyStrings):
		l.diags.Errorf(diag.Resource, idx, at, ErrTooManyNames)
	case errors.Is(err, intern.ErrHashCrowded):
		l.diags.Errorf(diag.Resource, idx, at, ErrSharedHash)
	}
	return token.NoValue
}

func (l *Lexer) errorAt(idx int, format string, args ...any) {
	l.diags.Errorf(diag.Lexical, idx, l.toks[idx], format, args...)
}

// errorSpan reports a problem inside a token that is not emitted yet. The
// diagnostic points at the synthesized span [start, end) of the current line
// and at the index the token will receive.
func (l *Lexer) errorSpan(start, end int, format string, args ...any) {
	size := end - start
	if size > token.MaxSize {
		size = token.MaxSize
	}
	at := token.Token{
		Kind:   token.Illegal,
		Size:   uint8(size),
		Value:  token.NoValue,
		Line:   uint32(l.line),
		Offset: uint32(start),
	}
	l.diags.Errorf(diag.Lexical, len(l.toks), at, format, args...)
}

func (l *Lexer) illegal(n int, format string, args ...any) {
	idx := l.emitOp(token.Illegal, n)
	l.errorAt(idx, format, args...)
}

func (l *Lexer) last() token.Token {
	if len(l.toks) == 0 {
		return token.Token{Kind: token.Illegal, Value: token.NoValue}
	}
	return l.toks[len(l.toks)-1]
}

// prev returns the last significant token on the current line.
func (l *Lexer) prev() (token.Token, bool) {
	for i := len(l.toks) - 1; i >= 0; i-- {
		t := l.toks[i]
		if int(t.Line) != l.line {
			return token.Token{}, false
		}
		if t.Kind.In(token.GroupComment) {
			continue
		}
		return t, true
	}
	return token.Token{}, false
}

// prevIsValue reports whether the previous token ends an operand, which makes
// an overloaded character that follows it a binary or postfix operator.
func (l *Lexer) prevIsValue() bool {
	t, ok := l.prev()
	if !ok {
		return false
	}
	return isValueKind(t.Kind)
}

func isValueKind(k token.Kind) bool {
	switch k.Group() {
	case token.GroupIdentifier, token.GroupLiteral, token.GroupTypeName:
		return true
	}
	switch k {
	case token.RParen, token.RBracket, token.RAngle,
		token.True, token.False, token.Null, token.Self,
		token.Try, token.Unwrap, token.TypeReference:
		return true
	}
	return false
}

// adjacent reports whether the previous token ends exactly at the cursor.
func (l *Lexer) adjacent() bool {
	t, ok := l.prev()
	return ok && int(t.End()) == l.pos
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isIdentByte(c byte) bool { return c == '_' || isLetter(c) || isDigit(c) }

// isIdentAt reports whether an identifier character starts at p.
func (l *Lexer) isIdentAt(p int) bool {
	r, n := l.runeAt(p)
	if n == 0 {
		return false
	}
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
