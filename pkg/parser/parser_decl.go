package parser

import (
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/token"
)

// Declarations:
//
//	decl       → { annotation } { qualifier } decl_body
//	annotation → '@' name [ '(' args ')' ]
//	decl_body  → fn name [generics] params [ '->' type ] [ block ]
//	           | aggregate | type name [generics] '=' type
//	           | import path [ as name ] | from path import name [ as name ] { ',' ... }
//	           | ( let | var | const ) name [ ':' type ] [ '=' expr ]
//	           | type name [ '=' expr ]
//	params     → '(' [ param { ',' param } ] ')'
//	param      → { mut | const } name [ ':' type ] [ '=' expr ]
//	member     → decl | field | case | init params block | deinit block
//	           | operator op params [ '->' type ] [ block ]
//	field      → name ':' type [ '=' expr ] [ ':' expr ]
//	case       → name [ '=' expr | '(' types ')' ] { ',' case }

// parseDecl parses a declaration with its annotations and qualifiers. local
// is set inside function bodies.
func (p *Parser) parseDecl(local bool) ast.Decl {
	start := p.pos
	h, quals := p.parseHeader()
	d := p.parseDeclBody(start, h)
	p.checkQualifiers(d, quals, local)
	return d
}

func (p *Parser) parseDeclBody(start int, h ast.Header) ast.Decl {
	switch k := p.kind(); k {
	case token.Fn:
		return p.parseFunc(start, h)
	case token.Class, token.Struct, token.Union, token.Variant, token.Enum, token.Interface, token.Bitfield:
		return p.parseAggregate(start, h)
	case token.Type:
		return p.parseTypeAlias(start, h)
	case token.Import, token.From:
		return p.parseImport(start)
	case token.Let, token.Var:
		p.next()
		return p.parseVar(start, h, k)
	}

	// const x = 1 reads as a declaration keyword, not a qualifier
	if k := p.kind(); h.Quals.Has(ast.QualConst) && (k == token.Variable || k == token.Constant) {
		h.Quals &^= ast.QualConst
		return p.parseVar(start, h, token.Const)
	}

	var d *ast.VarDecl
	if startsType(p.kind()) {
		p.attempt(ruleTypedDecl, func() bool {
			d = p.typedDeclHead(h)
			return d != nil
		})
	}
	if d == nil {
		p.errorf(ErrExpectedDecl, p.describe())
		p.sync()
		return &ast.BadDecl{NodeInfo: ast.NodeInfo{Range: p.span(start)}}
	}
	p.finishVarDecl(d, start)
	return d
}

// parseHeader parses annotations and qualifiers. It returns the token index of
// each qualifier for later checks.
func (p *Parser) parseHeader() (ast.Header, []int) {
	var h ast.Header
	for p.at(token.At) {
		h.Annotations = append(h.Annotations, p.parseAnnotation())
		// an annotation may sit on its own line
		for p.at(token.Indent) && p.tok().Level() == p.indent {
			p.next()
		}
	}

	var quals []int
	for {
		k := p.kind()
		q := ast.QualifierOf(k)
		if q == 0 {
			break
		}
		switch {
		case h.Quals.Has(q):
			p.errorf(ErrDuplicateQualifier, k.Text())
		case q == ast.QualPub && h.Quals.Has(ast.QualPriv), q == ast.QualPriv && h.Quals.Has(ast.QualPub):
			p.errorf(ErrQualifierConflict, token.Pub.Text(), token.Priv.Text())
		}
		h.Quals |= q
		quals = append(quals, p.pos)
		p.next()
	}
	return h, quals
}

func (p *Parser) parseAnnotation() *ast.Annotation {
	start := p.pos
	p.next() // @
	a := &ast.Annotation{Name: ast.Name{ID: ast.NoName, Tok: p.pos}}
	if t := p.tok(); t.HasString() && !t.Kind.In(token.GroupLiteral) {
		a.Name = p.name()
		p.next()
	} else {
		p.errorf(ErrExpectedName, p.describe())
	}
	if p.accept(token.LParen) {
		a.Args = p.parseArgs(token.RParen)
	}
	a.Range = p.span(start)
	return a
}

// checkQualifiers reports qualifiers that do not apply to d. quals holds the
// token index of each qualifier in the header.
func (p *Parser) checkQualifiers(d ast.Decl, quals []int, local bool) {
	for _, i := range quals {
		k := p.lx.Token(i).Kind
		q := ast.QualifierOf(k)
		if local && q&(ast.QualPub|ast.QualPriv|ast.QualStatic|ast.QualExtern) != 0 {
			p.errorAt(i, ErrQualifierLocal, k.Text())
			continue
		}
		if !allowsQualifier(d, q) {
			p.errorAt(i, ErrQualifierTarget, k.Text(), declWhat(d))
		}
	}
	if fn, ok := d.(*ast.FuncDecl); ok && fn.Quals.Has(ast.QualExtern) && fn.Body != nil {
		p.errorAt(fn.Body.Range.Start, ErrExternBody)
	}
}

func allowsQualifier(d ast.Decl, q ast.Qualifiers) bool {
	const visibility = ast.QualPub | ast.QualPriv
	switch d.(type) {
	case *ast.FuncDecl:
		return true
	case *ast.OperatorDecl:
		return q&(visibility|ast.QualInline|ast.QualConst|ast.QualMut|ast.QualStatic) != 0
	case *ast.InitDecl:
		return q&(visibility|ast.QualInline|ast.QualConst|ast.QualExtern) != 0
	case *ast.DeinitDecl:
		return q&(visibility|ast.QualInline) != 0
	case *ast.VarDecl:
		return q != ast.QualInline
	case *ast.FieldDecl:
		return q&(visibility|ast.QualMut|ast.QualStatic|ast.QualConst) != 0
	case *ast.AggregateDecl:
		return q&(visibility|ast.QualExtern) != 0
	case *ast.TypeAliasDecl, *ast.ImportDecl:
		return q&visibility != 0
	case *ast.BadDecl:
		return true
	}
	return false
}

func declWhat(d ast.Decl) string {
	switch d.(type) {
	case *ast.FuncDecl:
		return "a function"
	case *ast.OperatorDecl:
		return "an operator"
	case *ast.InitDecl:
		return "a constructor"
	case *ast.DeinitDecl:
		return "a destructor"
	case *ast.VarDecl:
		return "a variable"
	case *ast.FieldDecl:
		return "a field"
	case *ast.AggregateDecl:
		return "a type declaration"
	case *ast.TypeAliasDecl:
		return "a type alias"
	case *ast.ImportDecl:
		return "an import"
	case *ast.CaseDecl:
		return "a case"
	}
	return "this declaration"
}

// declName parses the name of a declaration. It records an error and returns
// an invalid name when the current token cannot name one.
func (p *Parser) declName() ast.Name {
	if !isName(p.kind()) {
		p.errorf(ErrExpectedName, p.describe())
		return ast.Name{ID: ast.NoName, Tok: p.pos}
	}
	n := p.name()
	p.next()
	return n
}

// ---------- Functions ----------

func (p *Parser) parseFunc(start int, h ast.Header) *ast.FuncDecl {
	p.next() // fn
	fn := &ast.FuncDecl{Header: h, Name: p.declName()}
	if fn.Name.Valid() {
		p.declare(fn.Name)
	}

	scope, outer := p.openScope(ast.ScopeFunction)
	defer func() { p.scope = outer }()
	fn.Scope = scope
	if p.at(token.LAngle) {
		fn.Generics = p.parseGenerics()
	}
	fn.Params = p.parseParams()
	if p.accept(token.Arrow) {
		fn.Result = p.parseType()
	}
	fn.Body = p.parseBody(scope)
	fn.Range = p.span(start)
	return fn
}

// parseBody parses an optional function body into scope.
func (p *Parser) parseBody(scope ast.ScopeID) *ast.Block {
	if !p.at(token.LBrace) && !p.at(token.Colon) {
		if !p.atStmtEnd() {
			p.errorf(ErrExpectedBlock, p.describe())
		}
		return nil
	}
	p.inFunc++
	defer func() { p.inFunc-- }()
	return p.parseBlockIn(scope)
}

// parseParams parses a parameter list into the current scope. Once a
// parameter has a default, every later one needs one too.
func (p *Parser) parseParams() []*ast.Param {
	if !p.expect(token.LParen) {
		return nil
	}
	var params []*ast.Param
	defaulted := false
	for !p.at(token.RParen) && !p.at(token.EOF) {
		start := p.pos
		param := &ast.Param{}
		for k := p.kind(); k == token.Mut || k == token.Const; k = p.kind() {
			param.Quals |= ast.QualifierOf(k)
			p.next()
		}

		k := p.kind()
		if !isName(k) && k != token.Self {
			p.errorf(ErrExpectedParam, p.describe())
			break
		}
		param.Name = p.name()
		p.next()
		if p.accept(token.Colon) {
			param.Type = p.parseType()
		} else if k != token.Self {
			p.errorf(ErrExpected, "':'", p.describe())
		}
		if p.accept(token.Assign) {
			param.Default = p.parseExpr()
			defaulted = true
		} else if defaulted {
			p.errorAt(param.Name.Tok, ErrMissingDefault, "parameter", p.lx.Text(param.Name.Tok))
		}
		param.Range = p.span(start)
		p.declare(param.Name)
		params = append(params, param)
		if !p.accept(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	return params
}

// ---------- Aggregates ----------

func (p *Parser) parseAggregate(start int, h ast.Header) *ast.AggregateDecl {
	agg := &ast.AggregateDecl{Header: h, Kind: p.kind(), Name: ast.Name{ID: ast.NoName, Tok: -1}}
	p.next()
	if isName(p.kind()) {
		agg.Name = p.name()
		p.declare(agg.Name)
		p.next()
	}

	scope, outer := p.openScope(ast.ScopeAggregate)
	defer func() { p.scope = outer }()
	agg.Scope = scope
	if p.at(token.LAngle) {
		agg.Generics = p.parseGenerics()
	}
	if p.at(token.Colon) && p.peek(1).Kind != token.Indent {
		p.next()
		agg.Base = p.parseType()
	}

	member := func() { agg.Members = append(agg.Members, p.parseMembers(agg.Kind)...) }
	switch {
	case p.accept(token.LBrace):
		p.braceItems(member)
		p.expect(token.RBrace)
	case p.at(token.Colon) && p.peek(1).Kind == token.Indent:
		p.next()
		p.indentItems(member)
	case p.atStmtEnd():
		// forward declaration
	default:
		p.errorf(ErrExpectedBlock, p.describe())
	}
	agg.Range = p.span(start)
	return agg
}

// parseMembers parses one member, or a comma-separated run of cases.
func (p *Parser) parseMembers(kind token.Kind) []ast.Decl {
	start := p.pos
	h, quals := p.parseHeader()

	k := p.kind()
	var d ast.Decl
	switch {
	case k == token.Init:
		d = p.parseInit(start, h)
	case k == token.Deinit:
		d = p.parseDeinit(start, h)
	case k == token.Operator:
		d = p.parseOperator(start, h)
	case isName(k) && p.peek(1).Kind == token.Colon:
		d = p.parseField(start, h)
	case isName(k) && (kind == token.Enum || kind == token.Variant) && h.Quals == 0:
		return p.parseCases()
	case startsDecl(k) || startsType(k):
		d = p.parseDeclBody(start, h)
	default:
		p.errorf(ErrExpectedMember, p.describe())
		p.sync()
		d = &ast.BadDecl{NodeInfo: ast.NodeInfo{Range: p.span(start)}}
	}
	p.checkQualifiers(d, quals, false)
	return []ast.Decl{d}
}

func (p *Parser) parseField(start int, h ast.Header) *ast.FieldDecl {
	f := &ast.FieldDecl{Header: h, Name: p.name()}
	p.next()
	p.next() // :
	f.Type = p.parseType()
	if p.accept(token.Assign) {
		f.Default = p.parseExpr()
	}
	if p.accept(token.Colon) {
		f.Width = p.parseExpr()
	}
	f.Range = p.span(start)
	p.declare(f.Name)
	return f
}

// parseCases parses Name, Name = value and Name(Types) cases separated by ','.
func (p *Parser) parseCases() []ast.Decl {
	var cases []ast.Decl
	for {
		start := p.pos
		c := &ast.CaseDecl{Name: p.declName()}
		switch {
		case p.accept(token.Assign):
			c.Value = p.parseExpr()
		case p.accept(token.LParen):
			c.Fields = p.parseTypeList(token.RParen)
			p.expect(token.RParen)
		}
		c.Range = p.span(start)
		if c.Name.Valid() {
			p.declare(c.Name)
		}
		cases = append(cases, c)
		if !p.accept(token.Comma) || p.atStmtEnd() {
			return cases
		}
	}
}

func (p *Parser) parseInit(start int, h ast.Header) *ast.InitDecl {
	p.next() // init
	d := &ast.InitDecl{Header: h}
	scope, outer := p.openScope(ast.ScopeFunction)
	defer func() { p.scope = outer }()
	d.Scope = scope
	d.Params = p.parseParams()
	d.Body = p.parseBody(scope)
	d.Range = p.span(start)
	return d
}

func (p *Parser) parseDeinit(start int, h ast.Header) *ast.DeinitDecl {
	p.next() // deinit
	d := &ast.DeinitDecl{Header: h}
	scope, outer := p.openScope(ast.ScopeFunction)
	defer func() { p.scope = outer }()
	d.Scope = scope
	if p.at(token.LParen) && p.peek(1).Kind == token.RParen {
		p.next()
		p.next()
	}
	d.Body = p.parseBody(scope)
	d.Range = p.span(start)
	return d
}

func (p *Parser) parseOperator(start int, h ast.Header) *ast.OperatorDecl {
	p.next() // operator
	d := &ast.OperatorDecl{Header: h, Op: p.operatorSymbol()}
	scope, outer := p.openScope(ast.ScopeFunction)
	defer func() { p.scope = outer }()
	d.Scope = scope
	d.Params = p.parseParams()
	if p.accept(token.Arrow) {
		d.Result = p.parseType()
	}
	d.Body = p.parseBody(scope)
	d.Range = p.span(start)
	return d
}

// operatorSymbol parses the operator after the operator keyword. Prefix
// spellings are folded into their binary kinds, '[]' reads as LBracket and
// '()' as LParen.
func (p *Parser) operatorSymbol() token.Kind {
	k := p.kind()
	switch k {
	case token.LBracket:
		p.next()
		p.expect(token.RBracket)
		return token.LBracket
	case token.LParen:
		if p.peek(1).Kind == token.RParen && p.peek(2).Kind == token.LParen {
			p.next()
			p.next()
			return token.LParen
		}
	case token.Deref:
		p.next()
		return token.Mul
	case token.AddressOf:
		p.next()
		return token.BitAnd
	case token.Try:
		p.next()
		return token.Question
	case token.Unwrap:
		p.next()
		return token.Not
	}
	_, infix := token.Infix(k)
	_, prefix := token.Prefix(k)
	_, postfix := token.Postfix(k)
	if k.In(token.GroupOperator) && (infix || prefix || postfix) && k != token.LParen {
		p.next()
		return k
	}
	p.errorf(ErrExpectedOperator, p.describe())
	return token.Illegal
}

// ---------- Aliases, Imports and Variables ----------

func (p *Parser) parseTypeAlias(start int, h ast.Header) *ast.TypeAliasDecl {
	p.next() // type
	d := &ast.TypeAliasDecl{Header: h}
	if k := p.kind(); isName(k) || k.In(token.GroupTypeName) {
		d.Name = p.name()
		p.next()
		p.declare(d.Name)
	} else {
		p.errorf(ErrExpectedName, p.describe())
		d.Name = ast.Name{ID: ast.NoName, Tok: p.pos}
	}
	if p.at(token.LAngle) {
		_, outer := p.openScope(ast.ScopeBlock)
		d.Generics = p.parseGenerics()
		p.expect(token.Assign)
		d.Target = p.parseType()
		p.scope = outer
	} else {
		p.expect(token.Assign)
		d.Target = p.parseType()
	}
	d.Range = p.span(start)
	return d
}

func (p *Parser) parseImport(start int) *ast.ImportDecl {
	d := &ast.ImportDecl{Alias: ast.Name{ID: ast.NoName, Tok: -1}}
	from := p.at(token.From)
	p.next()
	d.Path = p.importPath()

	if !from {
		if p.accept(token.As) {
			d.Alias = p.importName()
			if d.Alias.Valid() {
				p.declare(d.Alias)
			}
		} else if last := d.Path[len(d.Path)-1]; last.Valid() {
			p.declare(last)
		}
		d.Range = p.span(start)
		return d
	}

	p.expect(token.Import)
	for {
		in := ast.ImportName{Name: p.importName(), Alias: ast.Name{ID: ast.NoName, Tok: -1}}
		declared := in.Name
		if p.accept(token.As) {
			in.Alias = p.importName()
			declared = in.Alias
		}
		if declared.Valid() {
			p.declare(declared)
		}
		d.Names = append(d.Names, in)
		if !p.accept(token.Comma) {
			break
		}
	}
	d.Range = p.span(start)
	return d
}

// importPath parses name { '::' name }.
func (p *Parser) importPath() []ast.Name {
	path := []ast.Name{p.importName()}
	for p.accept(token.Scope) {
		path = append(path, p.importName())
	}
	return path
}

func (p *Parser) importName() ast.Name {
	if k := p.kind(); isName(k) || k.In(token.GroupTypeName) || k == token.Mul || k == token.Deref {
		n := p.name()
		p.next()
		return n
	}
	p.errorf(ErrExpectedName, p.describe())
	return ast.Name{ID: ast.NoName, Tok: p.pos}
}

// parseVar parses the rest of let/var/const after the keyword.
func (p *Parser) parseVar(start int, h ast.Header, keyword token.Kind) *ast.VarDecl {
	d := &ast.VarDecl{Header: h, Keyword: keyword, Name: p.declName()}
	if p.accept(token.Colon) {
		d.Type = p.parseType()
	}
	p.finishVarDecl(d, start)
	return d
}

// finishVarDecl parses an optional initialiser and declares the name.
func (p *Parser) finishVarDecl(d *ast.VarDecl, start int) {
	if p.accept(token.Assign) {
		d.Value = p.parseExpr()
	}
	d.Range = p.span(start)
	if d.Name.Valid() {
		p.declare(d.Name)
	}
}
