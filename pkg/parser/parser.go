// Package parser builds the Quill syntax tree from the lexer's token stream.
//
// # Usage
//
//	file, p := parser.ParseString("main.q", src, parser.Options{})
//	for _, d := range p.Diagnostics().Items() {
//	    // report d
//	}
//
// # Grammar Overview
//
// Expressions are parsed with binding powers (Pratt); declarations, types and
// statements by recursive descent:
//
//	file       → { item }
//	item       → decl | stmt
//	decl       → { annotation } { qualifier } ( fn | aggregate | alias | import | var )
//	aggregate  → kind [name] [generics] [':' type] ( '{' members '}' | ':' INDENT members )
//	block      → '{' { stmt } '}' | ':' INDENT { stmt } | ':' stmt
//	stmt       → decl | if | while | for | loop | match | return | ... | typed_decl | expr
//	typed_decl → type name [ '=' expr ]
//
// See each file for the rules of that section. Constructs that are ambiguous
// on their first tokens (typed declarations, lambdas) are tried under a saved
// lexer checkpoint and rolled back when they do not match.
package parser

import (
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/diag"
	"github.com/quill-lang/quill/pkg/intern"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/quill-lang/quill/pkg/token"
)

// DefaultMaxDepth bounds the recursion depth when Options.MaxDepth is zero.
const DefaultMaxDepth = 512

// Options control parsing.
type Options struct {
	Lexer    lexer.Options
	MaxDepth int
}

// Parser parses one source unit.
type Parser struct {
	lx    *lexer.Lexer
	diags *diag.List
	opts  Options

	pos    int // index of the current significant token
	last   int // index of the last consumed token, -1 before the first
	errPos int // token index of the last syntax error, -1 if none
	synErr int // syntax errors reported, including ones the list dropped

	indent  int // indentation level of the current line
	depth   int
	tooDeep bool
	inFunc  int // nesting of function bodies

	scopes *ast.Scopes
	scope  ast.ScopeID

	failed   map[memoKey]struct{}
	noLambda bool
}

// New returns a parser reading from lx. Syntax diagnostics are recorded in
// the lexer's diagnostic list.
func New(lx *lexer.Lexer, opts Options) *Parser {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	p := &Parser{
		lx:     lx,
		diags:  lx.Diagnostics(),
		opts:   opts,
		last:   -1,
		errPos: -1,
		scopes: ast.NewScopes(),
		scope:  ast.NoScope,
		failed: make(map[memoKey]struct{}),
	}
	p.pos = p.skipTrivia(0)
	return p
}

// ParseString lexes and parses text as a complete file.
func ParseString(path, text string, opts Options) (*ast.File, *Parser) {
	lx := lexer.New(source.NewString(path, text), nil, opts.Lexer)
	p := New(lx, opts)
	return p.ParseFile(), p
}

// Lexer returns the underlying lexer.
func (p *Parser) Lexer() *lexer.Lexer { return p.lx }

// Diagnostics returns the unit's lexical and syntax diagnostics.
func (p *Parser) Diagnostics() *diag.List { return p.diags }

// Strings returns the interner holding names and literal text.
func (p *Parser) Strings() *intern.Interner { return p.lx.Strings() }

// Scopes returns the scope arena built while parsing.
func (p *Parser) Scopes() *ast.Scopes { return p.scopes }

// Pos returns the index of the current token.
func (p *Parser) Pos() int { return p.pos }

// ParseFile parses the whole unit.
func (p *Parser) ParseFile() *ast.File {
	file := &ast.File{Path: p.lx.Source().Path, Scopes: p.scopes}
	file.Scope = p.scopes.Open(ast.ScopeFile, ast.NoScope)
	p.scope = file.Scope

	for {
		p.skipSeparators()
		if p.at(token.EOF) {
			break
		}
		if p.at(token.RBrace) {
			p.errorf(ErrUnexpected, p.describe())
			p.next()
			continue
		}
		before := p.pos
		file.Items = append(file.Items, p.parseStmt())
		p.endStatement(before)
	}
	file.Range = ast.Range{Start: 0, End: p.last + 1}
	return file
}

// ParseExpr parses a single expression that must span the rest of the input.
func (p *Parser) ParseExpr() ast.Expr {
	if p.scope == ast.NoScope {
		p.scope = p.scopes.Open(ast.ScopeFile, ast.NoScope)
	}
	p.skipSeparators()
	x := p.parseExpr()
	p.skipSeparators()
	if !p.at(token.EOF) {
		p.errorf(ErrExpected, "end of input", p.describe())
	}
	return x
}

// ---------- Token Helpers ----------

func (p *Parser) skipTrivia(i int) int {
	for p.lx.Token(i).Kind.IsTrivia() {
		i++
	}
	return i
}

// tok returns the current token.
func (p *Parser) tok() token.Token {
	return p.lx.Token(p.pos)
}

// kind returns the kind of the current token.
func (p *Parser) kind() token.Kind {
	return p.tok().Kind
}

// peek returns the n-th significant token after the current one.
func (p *Parser) peek(n int) token.Token {
	i := p.pos
	for ; n > 0; n-- {
		if p.lx.Token(i).Kind == token.EOF {
			break
		}
		i = p.skipTrivia(i + 1)
	}
	return p.lx.Token(i)
}

// next advances to the next significant token.
func (p *Parser) next() {
	if p.at(token.EOF) {
		return
	}
	p.last = p.pos
	p.pos = p.skipTrivia(p.pos + 1)
}

// at returns true if the current token is of the given kind.
func (p *Parser) at(k token.Kind) bool {
	return p.kind() == k
}

// accept consumes the current token if it matches and returns true.
func (p *Parser) accept(k token.Kind) bool {
	if p.at(k) {
		p.next()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise records an error.
func (p *Parser) expect(k token.Kind) bool {
	if p.accept(k) {
		return true
	}
	p.errorf(ErrExpected, quote(k.Text()), p.describe())
	return false
}

// errorf records a syntax error at the current token. A second error at the
// same token is dropped.
func (p *Parser) errorf(format string, args ...any) {
	if p.errPos == p.pos {
		return
	}
	p.errPos = p.pos
	p.synErr++
	p.diags.Errorf(diag.Syntax, p.pos, p.tok(), format, args...)
}

// errorAt records a syntax error at token index i.
func (p *Parser) errorAt(i int, format string, args ...any) {
	p.synErr++
	p.diags.Errorf(diag.Syntax, i, p.lx.Token(i), format, args...)
}

// describe renders the current token for diagnostics.
func (p *Parser) describe() string {
	switch p.kind() {
	case token.EOF:
		return "end of file"
	case token.Indent:
		return "end of line"
	}
	return quote(p.lx.Text(p.pos))
}

func quote(s string) string {
	return "'" + s + "'"
}

// name returns the current token as a name. The caller checks the kind.
func (p *Parser) name() ast.Name {
	return ast.Name{ID: p.tok().Value, Tok: p.pos}
}

// span returns the range from start to the last consumed token.
func (p *Parser) span(start int) ast.Range {
	end := p.last + 1
	if end < start {
		end = start
	}
	return ast.Range{Start: start, End: end}
}

// isName reports whether k can name a declaration or a member.
func isName(k token.Kind) bool {
	return k.In(token.GroupIdentifier) || k == token.TypeIdent
}

// ---------- Statement Boundaries ----------

// atStmtEnd reports whether the current token ends a statement.
func (p *Parser) atStmtEnd() bool {
	switch p.kind() {
	case token.Indent, token.Semicolon, token.RBrace, token.EOF:
		return true
	}
	return false
}

// skipSeparators consumes line starts and ';', tracking the indentation.
func (p *Parser) skipSeparators() {
	for {
		switch p.kind() {
		case token.Indent:
			p.indent = p.tok().Level()
		case token.Semicolon:
		default:
			return
		}
		p.next()
	}
}

// endStatement checks that a statement that began at before ended cleanly,
// and resynchronises otherwise. It always makes progress.
func (p *Parser) endStatement(before int) {
	if p.atStmtEnd() {
		return
	}
	p.errorf(ErrExpectedEnd, p.describe())
	p.sync()
	if p.pos == before {
		p.next()
	}
}

// sync skips tokens up to the next statement or declaration boundary: a line
// start or ';' or '}' at the current nesting, or a declaration keyword.
func (p *Parser) sync() {
	start := p.pos
	nest := 0
	for {
		k := p.kind()
		switch {
		case k == token.EOF:
			return
		case nest == 0 && (k == token.Indent || k == token.Semicolon || k == token.RBrace):
			return
		case nest == 0 && p.pos != start && token.IsDeclIntroducer(k):
			return
		case k.IsOpener():
			nest++
		case k.IsCloser() && nest > 0:
			nest--
		}
		p.next()
	}
}

// enter guards recursion depth. It reports false when the limit is reached;
// the resource error is recorded once per unit.
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		if !p.tooDeep {
			p.tooDeep = true
			p.errPos = p.pos
			p.diags.Errorf(diag.Resource, p.pos, p.tok(), ErrTooDeep, p.opts.MaxDepth)
		}
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

// ---------- Scopes ----------

func (p *Parser) openScope(kind ast.ScopeKind) (ast.ScopeID, ast.ScopeID) {
	outer := p.scope
	p.scope = p.scopes.Open(kind, outer)
	return p.scope, outer
}

func (p *Parser) declare(n ast.Name) {
	p.scopes.Declare(p.scope, n)
}
