package parser

import (
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/token"
)

// Statements:
//
//	stmt  → decl | block | if | while | for | loop | match | defer
//	      | return [expr] | yield [expr] | break | continue | '$' words
//	      | typed_decl | expr
//	block → '{' { stmt } '}' | ':' INDENT(n) stmt { INDENT(n) stmt } | ':' stmt
//	if    → if expr block [ else ( if | block ) ]
//	for   → for name in expr block
//	match → match expr ( '{' { arm } '}' | ':' INDENT arms )
//	arm   → expr '=>' ( block | stmt )

func (p *Parser) parseStmt() ast.Stmt {
	start := p.pos
	if !p.enter() {
		defer p.leave()
		p.sync()
		return &ast.BadStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}}
	}
	defer p.leave()

	k := p.kind()
	if startsDecl(k) {
		d := p.parseDecl(p.inFunc > 0)
		return &ast.DeclStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Decl: d}
	}

	switch k {
	case token.LBrace:
		return p.parseBlock()
	case token.If:
		return p.parseIf()
	case token.While:
		p.next()
		cond := p.parseCond()
		body := p.parseBlock()
		return &ast.WhileStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Cond: cond, Body: body}
	case token.For:
		return p.parseFor()
	case token.Loop:
		p.next()
		body := p.parseBlock()
		return &ast.LoopStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Body: body}
	case token.Match:
		return p.parseMatch()
	case token.Return:
		p.next()
		var v ast.Expr
		if !p.atStmtEnd() {
			v = p.parseExpr()
		}
		return &ast.ReturnStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Value: v}
	case token.Yield:
		p.next()
		var v ast.Expr
		if !p.atStmtEnd() {
			v = p.parseExpr()
		}
		return &ast.YieldStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Value: v}
	case token.Break:
		p.next()
		return &ast.BreakStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}}
	case token.Continue:
		p.next()
		return &ast.ContinueStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}}
	case token.Defer:
		p.next()
		var body ast.Stmt
		if p.at(token.LBrace) || p.at(token.Colon) {
			body = p.parseBlock()
		} else {
			body = p.parseStmt()
		}
		return &ast.DeferStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Body: body}
	case token.Dollar:
		p.next()
		var words []ast.Name
		for p.at(token.ShellWord) {
			words = append(words, p.name())
			p.next()
		}
		return &ast.ShellStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Words: words}
	}

	if startsType(k) {
		var d *ast.VarDecl
		if p.attempt(ruleTypedDecl, func() bool {
			d = p.typedDeclHead(ast.Header{})
			return d != nil
		}) {
			p.finishVarDecl(d, start)
			return &ast.DeclStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Decl: d}
		}
	}

	x := p.parseExpr()
	return &ast.ExprStmt{NodeInfo: ast.NodeInfo{Range: p.span(start)}, X: x}
}

// startsDecl reports whether a statement starting with k is a declaration.
func startsDecl(k token.Kind) bool {
	return k == token.Mut || token.IsDeclIntroducer(k)
}

// startsType reports whether a token can begin a typed declaration.
func startsType(k token.Kind) bool {
	return k.In(token.GroupTypeName) || k == token.Module
}

// typedDeclHead parses "Type name" and checks that a declaration, not an
// expression, follows. It reports nil without errors when it does not.
func (p *Parser) typedDeclHead(h ast.Header) *ast.VarDecl {
	start := p.pos
	typ := p.parseType()
	if _, bad := typ.(*ast.BadType); bad {
		return nil
	}
	if k := p.kind(); k != token.Variable && k != token.Constant {
		return nil
	}
	d := &ast.VarDecl{Header: h, Type: typ, Name: p.name()}
	d.Range = ast.Range{Start: start}
	p.next()
	if !p.at(token.Assign) && !p.atStmtEnd() {
		return nil
	}
	return d
}

// ---------- Blocks ----------

// parseBlock parses a block in a new block scope.
func (p *Parser) parseBlock() *ast.Block {
	scope, outer := p.openScope(ast.ScopeBlock)
	b := p.parseBlockIn(scope)
	p.scope = outer
	return b
}

// parseBlockIn parses a block whose declarations go into scope.
func (p *Parser) parseBlockIn(scope ast.ScopeID) *ast.Block {
	start := p.pos
	outer := p.scope
	p.scope = scope
	defer func() { p.scope = outer }()

	b := &ast.Block{Scope: scope}
	switch {
	case p.at(token.LBrace):
		p.next()
		p.braceItems(func() { b.Stmts = append(b.Stmts, p.parseStmt()) })
		p.expect(token.RBrace)

	case p.at(token.Colon):
		p.next()
		if !p.at(token.Indent) {
			if !p.atStmtEnd() {
				b.Stmts = []ast.Stmt{p.parseStmt()}
			}
			break
		}
		b.Indented = true
		p.indentItems(func() { b.Stmts = append(b.Stmts, p.parseStmt()) })

	default:
		p.errorf(ErrExpectedBlock, p.describe())
	}
	b.Range = p.span(start)
	return b
}

// braceItems calls item for each statement up to a '}' at this nesting.
func (p *Parser) braceItems(item func()) {
	outer := p.indent
	defer func() { p.indent = outer }()
	for {
		p.skipSeparators()
		if p.at(token.RBrace) || p.at(token.EOF) {
			return
		}
		before := p.pos
		item()
		p.endStatement(before)
	}
}

// indentItems calls item for each statement on the lines indented deeper
// than the current line. The current token is the first line's Indent.
func (p *Parser) indentItems(item func()) {
	outer := p.indent
	level := p.tok().Level()
	if level <= outer {
		p.errorf(ErrExpectedIndent)
		return
	}
	defer func() { p.indent = outer }()

	for p.at(token.Indent) && p.tok().Level() >= level {
		if p.tok().Level() > level {
			p.errorf(ErrUnexpectedIndent)
		}
		p.indent = level
		p.next()
		for !p.atStmtEnd() {
			before := p.pos
			item()
			p.endStatement(before)
			if !p.accept(token.Semicolon) {
				break
			}
		}
		for p.accept(token.Semicolon) {
		}
	}
}

// ---------- Control Flow ----------

// parseCond parses a loop or branch condition. Lambdas are not allowed at
// the top of a condition so that '(' opens a parenthesised expression.
func (p *Parser) parseCond() ast.Expr {
	saved := p.noLambda
	p.noLambda = true
	defer func() { p.noLambda = saved }()
	return p.parseExpr()
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.pos
	p.next() // if
	s := &ast.IfStmt{Cond: p.parseCond()}
	s.Then = p.parseBlock()

	// else on the next line at the same indentation
	if p.at(token.Indent) && p.tok().Level() == p.indent && p.peek(1).Kind == token.Else {
		p.next()
	}
	if p.accept(token.Else) {
		if p.at(token.If) {
			s.Else = p.parseIf()
		} else {
			s.Else = p.parseBlock()
		}
	}
	s.Range = p.span(start)
	return s
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.pos
	p.next() // for
	s := &ast.ForStmt{}
	scope, outer := p.openScope(ast.ScopeBlock)
	s.Scope = scope
	if isName(p.kind()) {
		s.Var = p.name()
		p.declare(s.Var)
		p.next()
	} else {
		p.errorf(ErrExpectedName, p.describe())
		s.Var = ast.Name{ID: ast.NoName, Tok: p.pos}
	}
	p.expect(token.In)
	s.Iter = p.parseCond()
	s.Body = p.parseBlockIn(scope)
	p.scope = outer
	s.Range = p.span(start)
	return s
}

func (p *Parser) parseMatch() ast.Stmt {
	start := p.pos
	p.next() // match
	s := &ast.MatchStmt{Subject: p.parseCond()}

	// arms on one line are separated by ','
	arms := func() {
		for {
			s.Arms = append(s.Arms, p.parseArm())
			if !p.accept(token.Comma) || p.atStmtEnd() {
				return
			}
		}
	}
	switch {
	case p.accept(token.LBrace):
		p.braceItems(arms)
		p.expect(token.RBrace)
	case p.at(token.Colon) && p.peek(1).Kind == token.Indent:
		p.next()
		p.indentItems(arms)
	default:
		p.errorf(ErrExpected, "'{' or ':'", p.describe())
	}
	s.Range = p.span(start)
	return s
}

func (p *Parser) parseArm() *ast.MatchArm {
	start := p.pos
	saved := p.noLambda
	p.noLambda = true
	pattern := p.parseExpr()
	p.noLambda = saved

	a := &ast.MatchArm{Pattern: pattern}
	p.expect(token.FatArrow)
	if p.at(token.LBrace) || p.at(token.Colon) {
		a.Body = p.parseBlock()
	} else {
		a.Body = p.parseStmt()
	}
	a.Range = p.span(start)
	return a
}
