package lexer

import (
	"github.com/quill-lang/quill/pkg/token"
)

// scanOperator lexes punctuation and operators. Overloaded characters are
// resolved from the type context, the previous token and one byte of
// lookahead.
func (l *Lexer) scanOperator() {
	c, next := l.cur[l.pos], l.peek()

	switch c {
	case '(':
		l.open(token.LParen, 1)
	case '[':
		l.open(token.LBracket, 1)
	case '{':
		l.open(token.LBrace, 1)
	case ')':
		l.close(token.RParen, 1)
	case ']':
		l.close(token.RBracket, 1)
	case '}':
		l.dropAngles()
		l.close(token.RBrace, 1)
	case ',':
		l.leaveTypeAt(l.Depth())
		l.emitOp(token.Comma, 1)
	case ';':
		l.dropAngles()
		l.leaveTypeAt(l.Depth())
		l.emitOp(token.Semicolon, 1)
	case ':':
		l.scanColon()
	case '.':
		switch {
		case next == '.' && l.at(l.pos+2) == '=':
			l.emitOp(token.DotDotEq, 3)
		case next == '.':
			l.emitOp(token.DotDot, 2)
		default:
			l.emitOp(token.Dot, 1)
		}
	case '@':
		idx := l.emitOp(token.At, 1)
		l.push(ContextAnnotation, idx)
	case '$':
		idx := l.emitOp(token.Dollar, 1)
		l.push(ContextShell, idx)
	case '=':
		switch next {
		case '=':
			l.emitOp(token.Eq, 2)
		case '>':
			l.leaveTypeAt(l.Depth())
			l.emitOp(token.FatArrow, 2)
		default:
			l.leaveTypeAt(l.Depth())
			l.emitOp(token.Assign, 1)
		}
	case '+':
		l.withAssign(token.Plus, token.PlusAssign)
	case '-':
		switch next {
		case '>':
			l.emitOp(token.Arrow, 2)
			l.enterType()
		case '=':
			l.emitOp(token.MinusAssign, 2)
		default:
			l.emitOp(token.Minus, 1)
		}
	case '/':
		l.withAssign(token.Div, token.DivAssign)
	case '%':
		l.withAssign(token.Mod, token.ModAssign)
	case '^':
		l.withAssign(token.BitXor, token.XorAssign)
	case '~':
		l.emitOp(token.Tilde, 1)
	case '|':
		switch next {
		case '|':
			l.emitOp(token.OrOr, 2)
		case '=':
			l.emitOp(token.OrAssign, 2)
		default:
			l.emitOp(token.BitOr, 1)
		}
	case '*':
		l.scanStar()
	case '&':
		l.scanAmp()
	case '?':
		l.scanQuestion()
	case '!':
		l.scanBang()
	case '<':
		l.scanLess()
	case '>':
		l.scanGreater()
	default:
		l.illegal(1, ErrIllegalChar, rune(c))
	}
}

func (l *Lexer) withAssign(plain, assign token.Kind) {
	if l.peek() == '=' {
		l.emitOp(assign, 2)
		return
	}
	l.emitOp(plain, 1)
}

// typeEnded reports whether the previous token completes a type, so a
// modifier character after it belongs to the surrounding expression.
func (l *Lexer) typeEnded() bool {
	if l.top().Kind == ContextAngle {
		return false
	}
	t, ok := l.prev()
	return ok && (t.Kind.In(token.GroupTypeName) || t.Kind == token.RAngle)
}

// modifier resolves a type-modifier character inside a type context. It
// reports false when the type context ended before this character.
func (l *Lexer) modifier(kind token.Kind) bool {
	if !l.inType() {
		return false
	}
	if l.typeEnded() {
		l.typeDepth = -1
		return false
	}
	l.emitOp(kind, 1)
	return true
}

// binary reports whether an overloaded character reads as a binary operator:
// it follows an operand or is separated from what comes next by whitespace.
func (l *Lexer) binary() bool {
	if l.prevIsValue() {
		return true
	}
	n := l.peek()
	return n == 0 || n == ' ' || n == '\t'
}

func (l *Lexer) scanStar() {
	if l.modifier(token.TypePointer) {
		return
	}
	switch l.peek() {
	case '*':
		l.emitOp(token.Power, 2)
	case '=':
		l.emitOp(token.MulAssign, 2)
	default:
		if l.binary() {
			l.emitOp(token.Mul, 1)
		} else {
			l.emitOp(token.Deref, 1)
		}
	}
}

func (l *Lexer) scanAmp() {
	if l.modifier(token.TypeReference) {
		return
	}
	next := l.peek()
	switch {
	case next == '&':
		l.emitOp(token.AndAnd, 2)
	case next == '=':
		l.emitOp(token.AndAssign, 2)
	case l.refMarker(l.pos) && l.adjacent() && l.prevIsName():
		l.emitOp(token.TypeReference, 1)
	case l.binary():
		l.emitOp(token.BitAnd, 1)
	default:
		l.emitOp(token.AddressOf, 1)
	}
}

// refMarker reports whether the '&' at p is a reference marker: not part of
// '&&' or '&=' and not followed by an identifier.
func (l *Lexer) refMarker(p int) bool {
	if l.at(p) != '&' {
		return false
	}
	n := l.at(p + 1)
	if n == '&' || n == '=' {
		return false
	}
	return !l.isIdentAt(p + 1)
}

func (l *Lexer) prevIsName() bool {
	t, ok := l.prev()
	return ok && (t.Kind == token.Function || t.Kind == token.Variable || t.Kind == token.TypeIdent)
}

func (l *Lexer) scanQuestion() {
	if l.modifier(token.TypeFallible) {
		return
	}
	if l.prevIsValue() && l.adjacent() {
		l.emitOp(token.Try, 1)
		return
	}
	l.top().Ternaries++
	l.emitOp(token.Question, 1)
}

func (l *Lexer) scanBang() {
	if l.peek() == '=' {
		l.emitOp(token.NotEq, 2)
		return
	}
	if l.modifier(token.TypeNoReturn) {
		return
	}
	if l.prevIsValue() && l.adjacent() {
		l.emitOp(token.Unwrap, 1)
		return
	}
	l.emitOp(token.Not, 1)
}

func (l *Lexer) scanLess() {
	next := l.peek()
	switch {
	case next == '<' && l.at(l.pos+2) == '=':
		l.emitOp(token.ShlAssign, 3)
	case next == '<':
		l.emitOp(token.Shl, 2)
	case next == '=':
		l.emitOp(token.LtEq, 2)
	case l.opensGeneric():
		l.open(token.LAngle, 1)
	default:
		l.emitOp(token.Lt, 1)
	}
}

// opensGeneric decides whether the '<' at the cursor starts a generic list.
func (l *Lexer) opensGeneric() bool {
	t, ok := l.prev()
	if !ok {
		return false
	}
	if !l.adjacent() {
		return false
	}
	if l.inType() && t.Kind.In(token.GroupTypeName) {
		return true
	}
	switch {
	case t.Kind.In(token.GroupIdentifier), t.Kind.In(token.GroupTypeName):
		return l.genericAt(l.pos)
	}
	return false
}

// genericAt reports whether the '<' at p is followed by the start of a type.
func (l *Lexer) genericAt(p int) bool {
	if l.at(p) != '<' {
		return false
	}
	q := p + 1
	switch c := l.at(q); {
	case c == '*' || c == '&' || c == '[' || c == '(':
		return true
	case c == '_' || isLetter(c) || c >= 0x80:
		end := q
		for end < len(l.cur) && l.isIdentAt(end) {
			_, n := l.runeAt(end)
			end += n
		}
		word := l.cur[q:end]
		if len(word) == 0 || l.endsComparison(end) {
			return false
		}
		if classifyName(word) == token.TypeIdent {
			return true
		}
		b, ok := token.Lookup(string(word))
		return ok && b.Kind.In(token.GroupTypeName)
	}
	return false
}

// endsComparison reports whether the name ending at p is the last operand of
// a comparison: it is followed by a block brace, a closing parenthesis or the
// end of the line, none of which can continue a generic list.
func (l *Lexer) endsComparison(p int) bool {
	for l.at(p) == ' ' || l.at(p) == '\t' {
		p++
	}
	switch l.at(p) {
	case 0, '\n', '\r', '{', ')':
		return true
	case '/':
		return l.at(p+1) == '/'
	}
	return false
}

func (l *Lexer) scanGreater() {
	if l.top().Kind == ContextAngle {
		// '>>' inside a generic list closes one level at a time
		l.close(token.RAngle, 1)
		return
	}
	next := l.peek()
	switch {
	case next == '>' && l.at(l.pos+2) == '=':
		l.emitOp(token.ShrAssign, 3)
	case next == '>':
		l.emitOp(token.Shr, 2)
	case next == '=':
		l.emitOp(token.GtEq, 2)
	default:
		l.emitOp(token.Gt, 1)
	}
}

// scanColon lexes '::' and ':'. A ':' that annotates a name enters the type
// context; a ':' inside '[]', one closing a ternary, and a block-opening ':'
// after a control keyword do not.
func (l *Lexer) scanColon() {
	if l.peek() == ':' {
		l.emitOp(token.Scope, 2)
		return
	}

	top := l.top()
	if l.typeDepth >= 0 && top.Kind != ContextAngle && l.typeDepth == l.Depth() {
		// bitfield widths and block colons after a type
		l.typeDepth = -1
		l.emitOp(token.Colon, 1)
		return
	}
	if top.Ternaries > 0 {
		top.Ternaries--
		l.emitOp(token.Colon, 1)
		return
	}

	annotates := top.Kind != ContextSquare && l.prevIsAnnotatable() && !l.blockHead()
	l.emitOp(token.Colon, 1)
	if annotates {
		l.enterType()
	}
}

func (l *Lexer) prevIsAnnotatable() bool {
	t, ok := l.prev()
	if !ok {
		return false
	}
	return t.Kind == token.Variable || t.Kind == token.Constant || t.Kind == token.Self
}

// blockHead reports whether the current line starts with a control keyword,
// making a ':' after a name the opener of an indented block.
func (l *Lexer) blockHead() bool {
	if !l.headKnown || !l.indentSensitive() {
		return false
	}
	switch l.lineHead {
	case token.If, token.Else, token.While, token.For, token.Loop, token.Match:
		return true
	}
	return false
}
