package lexer

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/quill-lang/quill/pkg/token"
)

// unitSymbols are the non-letter atoms a unit expression may use. Compatibility
// forms are listed too; normalizeUnit folds them together.
var unitSymbols = map[rune]bool{
	'\u00B5': true, // micro sign
	'\u03BC': true, // greek mu
	'\u2126': true, // ohm sign
	'\u03A9': true, // greek omega
	'\u00B0': true, // degree
	'\u212B': true, // angstrom sign
	'\u00C5': true, // A with ring
	'\u2032': true, // prime
	'\u2033': true, // double prime
	'%':      true,
}

var superscripts = map[rune]bool{
	'\u2070': true, '\u00B9': true, '\u00B2': true, '\u00B3': true, '\u2074': true,
	'\u2075': true, '\u2076': true, '\u2077': true, '\u2078': true, '\u2079': true,
}

const superMinus = '\u207B'

// scanUnit matches a unit expression starting at p and returns its end, or
// -1. Atoms are runs of ASCII letters or unit symbols, optionally raised to
// '^[-]digits' or a superscript power, joined by '/', '·' or '*'. A reserved
// spelling is never a unit.
func (l *Lexer) scanUnit(p int) int {
	start := p
	end, ok := l.unitAtom(p)
	if !ok {
		return -1
	}
	p = l.unitPower(end)
	for {
		n := l.unitJoiner(p)
		if n == 0 {
			break
		}
		end, ok := l.unitAtom(p + n)
		if !ok {
			break
		}
		p = l.unitPower(end)
	}

	if l.isIdentAt(p) {
		return -1
	}
	text := string(l.cur[start:p])
	if _, reserved := token.Lookup(text); reserved {
		return -1
	}
	if text == "%" && l.operandAfter(p) {
		return -1
	}
	return p
}

func (l *Lexer) unitAtom(p int) (int, bool) {
	start := p
	for p < len(l.cur) {
		c := l.cur[p]
		if isLetter(c) {
			p++
			continue
		}
		r, n := l.runeAt(p)
		if !unitSymbols[r] {
			break
		}
		p += n
	}
	return p, p > start
}

func (l *Lexer) unitPower(p int) int {
	if l.at(p) == '^' {
		q := p + 1
		if l.at(q) == '-' {
			q++
		}
		if !isDigit(l.at(q)) {
			return p
		}
		for isDigit(l.at(q)) {
			q++
		}
		return q
	}

	q := p
	if r, n := l.runeAt(q); r == superMinus {
		q += n
	}
	digits := q
	for {
		r, n := l.runeAt(q)
		if n == 0 || !superscripts[r] {
			break
		}
		q += n
	}
	if q == digits {
		return p
	}
	return q
}

func (l *Lexer) unitJoiner(p int) int {
	switch l.at(p) {
	case '/', '*':
		return 1
	}
	if r, n := l.runeAt(p); r == '\u00B7' {
		return n
	}
	return 0
}

// operandAfter reports whether an operand follows p after whitespace, which
// makes a lone '%' the modulo operator.
func (l *Lexer) operandAfter(p int) bool {
	for l.at(p) == ' ' || l.at(p) == '\t' {
		p++
	}
	c := l.at(p)
	if c == 0 {
		return false
	}
	if isDigit(c) || c == '(' || c == '"' || c == '\'' || c == '-' {
		return true
	}
	return l.isIdentAt(p)
}

// normalizeUnit folds compatibility spellings (micro sign, ohm sign,
// angstrom sign, superscript digits) to one canonical form.
func normalizeUnit(b []byte) []byte {
	if !utf8.Valid(b) {
		return b
	}
	return norm.NFKC.Bytes(b)
}
