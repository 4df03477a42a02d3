package lexer

import (
	"github.com/quill-lang/quill/pkg/token"
)

// scanNumber lexes a numeric literal: optional sign, base prefix, digits
// with grouping separators, fraction, exponent, type suffix and a unit
// expression after one space. Trailing structure that does not parse is
// left out of the literal.
func (l *Lexer) scanNumber() {
	start := l.pos
	p := start
	if c := l.at(p); c == '-' || c == '+' {
		p++
	}

	base := 10
	if l.at(p) == '0' {
		switch l.at(p + 1) {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			p += 2
		}
	}

	digits := p
	p = l.digitRun(p, base)
	if p == digits {
		l.errorSpan(start, p, ErrMissingDigits)
	}
	if base < 10 && isDigit(l.at(p)) {
		bad := p
		for isDigit(l.at(p)) {
			p++
		}
		l.errorSpan(bad, p, ErrInvalidDigit, l.at(bad), base)
	}

	if base == 10 && l.at(p) == '.' && isDigit(l.at(p+1)) {
		p = l.digitRun(p+1, 10)
	}
	p = l.exponent(p, base)

	sufStart, sufEnd := -1, -1
	if c := l.at(p); isLetter(c) || c == '_' {
		q := p
		for isIdentByte(l.at(q)) {
			q++
		}
		word := string(l.cur[p:q])
		if b, ok := token.Lookup(word); ok && token.IsNumericSuffix(b.Kind) {
			sufStart, sufEnd = p, q
			p = q
		} else {
			l.errorSpan(p, q, ErrMalformedSuffix, word)
		}
	}

	unitStart, unitEnd := -1, -1
	if l.at(p) == ' ' {
		if end := l.scanUnit(p + 1); end > 0 {
			unitStart, unitEnd = p+1, end
			p = end
		}
	}

	l.pos = p
	idx := len(l.toks)
	at := token.Token{Kind: token.Number, Line: uint32(l.line), Offset: uint32(start), Size: clampSize(p - start)}
	l.emit(token.Number, start, p, l.intern(l.cur[start:p], idx, at))

	if !l.opts.SubTokens {
		return
	}
	if sufStart >= 0 {
		l.emit(token.NumberSuffix, sufStart, sufEnd, l.intern(l.cur[sufStart:sufEnd], idx, at))
	}
	if unitStart >= 0 {
		l.emit(token.Unit, unitStart, unitEnd, l.intern(normalizeUnit(l.cur[unitStart:unitEnd]), idx, at))
	}
}

// digitRun consumes digits of base starting at p. Decimal literals group
// with '\'' and other bases with '_'; a separator must sit between digits.
func (l *Lexer) digitRun(p, base int) int {
	sep := byte('_')
	if base == 10 {
		sep = '\''
	}
	for {
		c := l.at(p)
		if isDigitOf(c, base) {
			p++
			continue
		}
		if c == sep && isDigitOf(l.at(p-1), base) && isDigitOf(l.at(p+1), base) {
			p++
			continue
		}
		return p
	}
}

// exponent consumes 'e' (decimal) or 'p' (hex) exponents. A marker without
// digits is rolled back.
func (l *Lexer) exponent(p, base int) int {
	c := l.at(p)
	switch {
	case base == 10 && (c == 'e' || c == 'E'):
	case base == 16 && (c == 'p' || c == 'P'):
	default:
		return p
	}
	q := p + 1
	if s := l.at(q); s == '+' || s == '-' {
		q++
	}
	if !isDigit(l.at(q)) {
		return p
	}
	return l.digitRun(q, 10)
}

func isDigitOf(c byte, base int) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return c >= '0' && c <= '7'
	case 16:
		return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
	}
	return isDigit(c)
}
