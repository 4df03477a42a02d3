package parser

import (
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/token"
)

// Types:
//
//	type     → '*' type | '&' type | '?' type | '!' | '[' type [ ';' expr ] ']'
//	         | '(' [ type { ',' type } ] ')' | fn '(' [ types ] ')' [ '->' type ]
//	         | path [ '<' type { ',' type } '>' ]
//	path     → name { '::' name }
//	generics → '<' gparam { ',' gparam } '>'
//	gparam   → name [ ':' type ] [ '=' type ]
//
// The lexer marks modifier characters inside a type context; outside one the
// same characters arrive as expression operators, so both spellings are
// accepted here.

func (p *Parser) parseType() ast.Type {
	start := p.pos
	if !p.enter() {
		defer p.leave()
		return &ast.BadType{NodeInfo: ast.NodeInfo{Range: p.span(start)}}
	}
	defer p.leave()

	switch k := p.kind(); k {
	case token.TypePointer, token.Deref, token.Mul:
		p.next()
		elem := p.parseType()
		return &ast.PointerType{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Elem: elem}

	case token.Power:
		p.next()
		elem := p.parseType()
		inner := &ast.PointerType{NodeInfo: ast.NodeInfo{Range: ast.Range{Start: start, End: p.last + 1}}, Elem: elem}
		return &ast.PointerType{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Elem: inner}

	case token.TypeReference, token.AddressOf, token.BitAnd:
		p.next()
		elem := p.parseType()
		return &ast.ReferenceType{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Elem: elem}

	case token.TypeFallible, token.Question, token.Try:
		p.next()
		elem := p.parseType()
		return &ast.FallibleType{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Elem: elem}

	case token.TypeNoReturn, token.Not, token.Unwrap:
		p.next()
		return &ast.NoReturnType{NodeInfo: ast.NodeInfo{Range: p.span(start)}}

	case token.LBracket:
		p.next()
		elem := p.parseType()
		var n ast.Expr
		if p.accept(token.Semicolon) {
			n = p.parseExpr()
		}
		p.expect(token.RBracket)
		return &ast.ArrayType{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Elem: elem, Len: n}

	case token.LParen:
		p.next()
		elems := p.parseTypeList(token.RParen)
		p.expect(token.RParen)
		return &ast.TupleType{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Elems: elems}

	case token.Fn:
		p.next()
		p.expect(token.LParen)
		params := p.parseTypeList(token.RParen)
		p.expect(token.RParen)
		var result ast.Type
		if p.accept(token.Arrow) {
			result = p.parseType()
		}
		return &ast.FuncType{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Params: params, Result: result}
	}

	if t := p.tok(); isName(t.Kind) || t.Kind.In(token.GroupTypeName) || t.Kind == token.Self {
		return p.parseTypeName()
	}
	p.errorf(ErrExpectedType, p.describe())
	return &ast.BadType{NodeInfo: ast.NodeInfo{Range: ast.Range{Start: start, End: start}}}
}

// parseTypeName parses a possibly qualified, possibly generic type name.
func (p *Parser) parseTypeName() ast.Type {
	start := p.pos
	tn := &ast.TypeName{}
	for {
		t := p.tok()
		n := p.name()
		p.next()
		if !p.at(token.Scope) {
			tn.Name = n
			if t.Kind.In(token.GroupTypeName) && t.Kind != token.TypeIdent {
				tn.Builtin = t.Kind
			}
			break
		}
		tn.Path = append(tn.Path, n)
		p.next() // ::
		if k := p.kind(); !isName(k) && !k.In(token.GroupTypeName) {
			p.errorf(ErrExpectedName, p.describe())
			tn.Name = ast.Name{ID: ast.NoName, Tok: p.pos}
			tn.Range = p.span(start)
			return tn
		}
	}
	if p.accept(token.LAngle) {
		tn.Args = p.parseTypeList(token.RAngle)
		p.expect(token.RAngle)
	}
	tn.Range = p.span(start)
	return tn
}

// parseTypeList parses comma-separated types up to, not including, closer.
func (p *Parser) parseTypeList(closer token.Kind) []ast.Type {
	var types []ast.Type
	for !p.at(closer) && !p.at(token.EOF) {
		types = append(types, p.parseType())
		if !p.accept(token.Comma) {
			break
		}
	}
	return types
}

// parseGenerics parses a generic parameter list at '<'.
func (p *Parser) parseGenerics() []*ast.GenericParam {
	p.next() // <
	var params []*ast.GenericParam
	defaulted := false
	for !p.at(token.RAngle) && !p.at(token.EOF) {
		start := p.pos
		if !isName(p.kind()) {
			p.errorf(ErrExpectedParam, p.describe())
			break
		}
		gp := &ast.GenericParam{Name: p.name()}
		p.next()
		if p.accept(token.Colon) {
			gp.Bound = p.parseType()
		}
		if p.accept(token.Assign) {
			gp.Default = p.parseType()
			defaulted = true
		} else if defaulted {
			p.errorAt(gp.Name.Tok, ErrMissingDefault, "generic parameter", p.lx.Text(gp.Name.Tok))
		}
		gp.Range = p.span(start)
		p.declare(gp.Name)
		params = append(params, gp)
		if !p.accept(token.Comma) {
			break
		}
	}
	p.expect(token.RAngle)
	return params
}
