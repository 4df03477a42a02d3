package parser

import (
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/token"
)

// Expression parsing with binding powers taken from the token package.
//
// parseBinary parses a prefix or primary term, then repeatedly looks at the
// next operator: when its left power is below minPower it stops, otherwise it
// consumes the operator and parses the right operand with the operator's right
// power as the new minimum. Left-associative operators have Left < Right,
// right-associative ones Right < Left.
//
//	expr    → unary { infix unary | postfix | '?' expr ':' expr | (as|is) type }
//	unary   → prefix unary | primary

// parseExpr parses a full expression.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(minPower uint8) ast.Expr {
	start := p.pos
	if !p.enter() {
		defer p.leave()
		return &ast.BadExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}}
	}
	defer p.leave()

	left := p.parseUnary()
	for {
		k := p.kind()
		if bp, ok := token.Postfix(k); ok {
			if bp.Left < minPower {
				break
			}
			left = p.parsePostfix(start, left)
			continue
		}

		bp, ok := token.Infix(k)
		if !ok || bp.Left < minPower {
			break
		}
		switch k {
		case token.Question:
			p.next()
			then := p.parseBinary(0)
			p.expect(token.Colon)
			els := p.parseBinary(bp.Right)
			left = &ast.TernaryExpr{
				NodeInfo: ast.NodeInfo{Range: p.span(start)},
				Cond:     left,
				Then:     then,
				Else:     els,
			}
		case token.As, token.Is:
			p.next()
			typ := p.parseType()
			left = &ast.CastExpr{
				NodeInfo: ast.NodeInfo{Range: p.span(start)},
				Op:       k,
				X:        left,
				Type:     typ,
			}
		default:
			p.next()
			right := p.parseBinary(bp.Right)
			left = &ast.BinaryExpr{
				NodeInfo: ast.NodeInfo{Range: p.span(start)},
				Op:       k,
				X:        left,
				Y:        right,
			}
		}
	}
	return left
}

// parseUnary parses prefix operators and primary expressions.
func (p *Parser) parseUnary() ast.Expr {
	start := p.pos
	k := p.kind()
	if bp, ok := token.Prefix(k); ok {
		p.next()
		x := p.parseBinary(bp.Right)
		return &ast.UnaryExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Op: k, X: x}
	}
	if k == token.Sizeof {
		// sizeof T; sizeof(T) lexes as a call
		p.next()
		x := p.parseBinary(token.PowerPrefix)
		return &ast.UnaryExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Op: k, X: x}
	}
	return p.parsePrimary()
}

// parsePostfix parses one postfix operator applied to x, which started at
// token index start.
func (p *Parser) parsePostfix(start int, x ast.Expr) ast.Expr {
	k := p.kind()
	switch k {
	case token.LParen:
		p.next()
		args := p.parseArgs(token.RParen)
		return &ast.CallExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Fun: x, Args: args}

	case token.LAngle:
		p.next()
		types := p.parseTypeList(token.RAngle)
		p.expect(token.RAngle)
		return &ast.GenericExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, X: x, Args: types}

	case token.LBracket:
		return p.parseIndex(start, x)

	case token.Dot, token.Scope:
		p.next()
		var n ast.Name
		if t := p.tok(); isName(t.Kind) || t.Kind.In(token.GroupTypeName) || t.Kind == token.Number || (t.HasString() && t.Kind.In(token.GroupKeyword)) {
			n = p.name()
			p.next()
		} else {
			p.errorf(ErrExpectedName, p.describe())
			n = ast.Name{ID: ast.NoName, Tok: p.pos}
		}
		if k == token.Dot {
			return &ast.MemberExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, X: x, Name: n}
		}
		return &ast.ScopeExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, X: x, Name: n}
	}

	// ? ! and the reference marker
	p.next()
	return &ast.PostfixExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, Op: k, X: x}
}

// parseIndex parses x[i] and the slice forms x[lo:hi], x[:hi], x[lo:].
func (p *Parser) parseIndex(start int, x ast.Expr) ast.Expr {
	p.next() // [
	var lo ast.Expr
	if !p.at(token.Colon) {
		lo = p.parseExpr()
	}
	if !p.accept(token.Colon) {
		p.expect(token.RBracket)
		return &ast.IndexExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, X: x, Index: lo}
	}
	var hi ast.Expr
	if !p.at(token.RBracket) {
		hi = p.parseExpr()
	}
	p.expect(token.RBracket)
	return &ast.SliceExpr{NodeInfo: ast.NodeInfo{Range: p.span(start)}, X: x, Lo: lo, Hi: hi}
}

// parseArgs parses call arguments up to and including closer:
//
//	args → [ arg { ',' arg } [','] ]
//	arg  → [ name '=' ] expr
func (p *Parser) parseArgs(closer token.Kind) []*ast.Arg {
	var args []*ast.Arg
	for !p.at(closer) && !p.at(token.EOF) {
		start := p.pos
		arg := &ast.Arg{Name: ast.Name{ID: ast.NoName, Tok: -1}}
		if k := p.kind(); (k == token.Variable || k == token.Constant) && p.peek(1).Kind == token.Assign {
			arg.Name = p.name()
			p.next()
			p.next()
		}
		arg.Value = p.parseExpr()
		arg.Range = p.span(start)
		args = append(args, arg)
		if !p.accept(token.Comma) {
			break
		}
	}
	p.expect(closer)
	return args
}
