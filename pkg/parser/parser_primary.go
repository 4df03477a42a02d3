package parser

import (
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/token"
)

// Primary expressions:
//
//	primary → name | literal | '(' ')' | '(' expr ')' | '(' expr ',' ... ')'
//	        | lambda | '[' [ expr { ',' expr } ] ']' | new type [ '(' args ')' ]
//	lambda  → '(' [ param { ',' param } ] ')' [ '->' type ] '=>' ( expr | block )

func (p *Parser) parsePrimary() ast.Expr {
	start := p.pos
	t := p.tok()
	switch {
	case t.Kind.In(token.GroupIdentifier), t.Kind.In(token.GroupTypeName), t.Kind == token.Self:
		p.next()
		return &ast.Ident{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Name: ast.Name{ID: t.Value, Tok: start}, Kind: t.Kind}

	case t.Kind == token.Number, t.Kind == token.String, t.Kind == token.RawString,
		t.Kind == token.True, t.Kind == token.False, t.Kind == token.Null:
		p.next()
		return &ast.Literal{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Kind: t.Kind, Value: t.Value}

	case t.Kind == token.LParen:
		if !p.noLambda {
			if l := p.tryLambda(); l != nil {
				return l
			}
		}
		return p.parseParen()

	case t.Kind == token.LBracket:
		p.next()
		var elems []ast.Expr
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			elems = append(elems, p.parseExpr())
			if !p.accept(token.Comma) {
				break
			}
		}
		p.expect(token.RBracket)
		return &ast.ArrayExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Elems: elems}

	case t.Kind == token.New:
		p.next()
		typ := p.parseType()
		var args []*ast.Arg
		if p.accept(token.LParen) {
			args = p.parseArgs(token.RParen)
		}
		return &ast.NewExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Type: typ, Args: args}
	}

	p.errorf(ErrExpectedExpr, p.describe())
	return &ast.BadExpr{NodeInfo: ast.NodeInfo{Range: ast.Range{Start: start, End: start}}}
}

// parseParen parses a parenthesised expression or a tuple.
func (p *Parser) parseParen() ast.Expr {
	start := p.pos
	p.next() // (
	if p.accept(token.RParen) {
		return &ast.TupleExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}}
	}

	saved := p.noLambda
	p.noLambda = false
	defer func() { p.noLambda = saved }()

	first := p.parseExpr()
	if !p.at(token.Comma) {
		p.expect(token.RParen)
		return &ast.ParenExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, X: first}
	}

	elems := []ast.Expr{first}
	for p.accept(token.Comma) {
		if p.at(token.RParen) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RParen)
	return &ast.TupleExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Elems: elems}
}

// tryLambda parses a lambda when the tokens at '(' form a lambda head, and
// returns nil, leaving the position untouched, when they do not.
func (p *Parser) tryLambda() ast.Expr {
	start := p.pos
	var (
		params []*ast.Param
		result ast.Type
		scope  ast.ScopeID
		outer  ast.ScopeID
	)
	ok := p.attempt(ruleLambda, func() bool {
		p.next() // (
		scope, outer = p.openScope(ast.ScopeFunction)
		for !p.at(token.RParen) {
			param, ok := p.lambdaParam()
			if !ok {
				return false
			}
			params = append(params, param)
			if !p.accept(token.Comma) {
				break
			}
		}
		if !p.accept(token.RParen) {
			return false
		}
		if p.accept(token.Arrow) {
			result = p.parseType()
		}
		return p.accept(token.FatArrow)
	})
	if !ok {
		return nil
	}

	lam := &ast.LambdaExpr{Params: params, Result: result, Scope: scope}
	p.inFunc++
	if p.at(token.LBrace) {
		lam.Body = p.parseBlockIn(scope)
	} else {
		lam.Body = p.parseExpr()
	}
	p.inFunc--
	p.scope = outer
	lam.Range = p.span(start)
	return lam
}

// lambdaParam parses name [':' type] without reporting errors.
func (p *Parser) lambdaParam() (*ast.Param, bool) {
	start := p.pos
	k := p.kind()
	if k != token.Variable && k != token.Function && k != token.Self {
		return nil, false
	}
	param := &ast.Param{Name: p.name()}
	p.next()
	if p.accept(token.Colon) {
		param.Type = p.parseType()
	}
	param.Range = p.span(start)
	p.declare(param.Name)
	return param, true
}
