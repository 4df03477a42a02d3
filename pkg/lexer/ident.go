package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/quill-lang/quill/pkg/token"
)

// scanIdentifier lexes a name or reserved word and classifies it.
func (l *Lexer) scanIdentifier() {
	start := l.pos
	p := start
	for p < len(l.cur) {
		c := l.cur[p]
		if c < utf8.RuneSelf {
			if !isIdentByte(c) {
				break
			}
			p++
			continue
		}
		r, n := utf8.DecodeRune(l.cur[p:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p += n
	}
	word := l.cur[start:p]
	l.pos = p

	idx := len(l.toks)
	at := token.Token{Kind: token.Variable, Line: uint32(l.line), Offset: uint32(start), Size: clampSize(len(word))}
	id := l.intern(word, idx, at)

	kind := l.classify(word, id, p)
	l.emit(kind, start, p, id)

	if kind == token.As || kind == token.Is {
		l.enterType()
	}
}

// classify picks the kind of the name word whose text ends at p.
func (l *Lexer) classify(word []byte, id uint16, p int) token.Kind {
	if id != token.NoValue && int(id) < token.NumBuiltins {
		b := token.Builtins[id]
		if !b.Pure && l.callableAt(p) {
			return token.Function
		}
		return b.Kind
	}

	kind := classifyName(word)
	if kind != token.Variable {
		return kind
	}
	switch {
	case l.callableAt(p):
		return token.Function
	case l.at(p) == ':' && l.at(p+1) == ':':
		return token.Module
	}
	return token.Variable
}

// callableAt reports whether the name ending at p is immediately followed by
// a call parenthesis, a generic list or a reference marker.
func (l *Lexer) callableAt(p int) bool {
	switch l.at(p) {
	case '(':
		return true
	case '<':
		return l.genericAt(p)
	case '&':
		return l.refMarker(p)
	}
	return false
}

// classifyName applies the capitalisation rules to a non-reserved name:
// a leading uppercase letter followed somewhere by a lowercase one (or a
// single uppercase letter) is a type name, a run of uppercase letters, digits
// and underscores at least two long is a constant, anything else a variable.
func classifyName(word []byte) token.Kind {
	first, _ := utf8.DecodeRune(word)
	upper, lower, count := 0, 0, 0
	for _, r := range string(word) {
		count++
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}

	switch {
	case unicode.IsUpper(first) && (lower > 0 || count == 1):
		return token.TypeIdent
	case upper > 0 && lower == 0 && count >= 2:
		return token.Constant
	}
	return token.Variable
}

func clampSize(n int) uint8 {
	if n > token.MaxSize {
		return token.MaxSize
	}
	return uint8(n)
}
