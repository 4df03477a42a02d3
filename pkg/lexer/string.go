package lexer

import (
	"unicode/utf8"

	"github.com/quill-lang/quill/pkg/token"
)

// scanString lexes 'raw' and "interpolated" literals. Escapes in
// interpolated literals are validated here; their decoding is left to later
// stages, so the interned value is the literal's body as written. A literal
// that reaches the end of its line is a hard error that ends the scan.
func (l *Lexer) scanString() {
	start := l.pos
	quote := l.cur[start]
	p := start + 1
	for {
		if p >= len(l.cur) {
			idx := l.emit(token.Illegal, start, len(l.cur), token.NoValue)
			l.errorAt(idx, ErrUnterminated)
			l.abort()
			return
		}
		c := l.cur[p]
		if c == quote {
			break
		}
		if c == '\\' && quote == '"' {
			if p+1 >= len(l.cur) {
				p++
				continue
			}
			p += l.escape(p)
			continue
		}
		p++
	}
	p++ // closing quote

	kind := token.String
	if quote == '\'' {
		kind = token.RawString
	}
	l.pos = p
	idx := len(l.toks)
	at := token.Token{Kind: kind, Line: uint32(l.line), Offset: uint32(start), Size: clampSize(p - start)}
	body := l.cur[start+1 : p-1]
	value := token.NoValue
	if len(body) <= token.MaxSize {
		value = l.intern(body, idx, at)
	}
	l.emit(kind, start, p, value)
}

// escape validates the escape sequence starting with the backslash at p and
// returns its length in bytes. Invalid sequences are reported and skipped.
func (l *Lexer) escape(p int) int {
	c := l.at(p + 1)
	switch c {
	case 'n', 't', 'r', '\\', '"', '\'', '{', '}':
		return 2
	case '0', '1', '2', '3', '4', '5', '6', '7':
		return l.octalEscape(p)
	case 'x':
		return l.hexEscape(p, 2, 0xFF)
	case 'u':
		return l.hexEscape(p, 4, 0xFFFF)
	case 'U':
		return l.hexEscape(p, 6, utf8.MaxRune)
	}
	r, n := l.runeAt(p + 1)
	l.errorSpan(p, p+1+n, ErrUnknownEscape, r)
	return 1 + n
}

// octalEscape handles '\0' and '\NNN'. A lone '\0' is NUL; otherwise exactly
// three octal digits are required and the value must fit in a byte.
func (l *Lexer) octalEscape(p int) int {
	n := 0
	for n < 3 && isDigitOf(l.at(p+1+n), 8) {
		n++
	}
	if l.at(p+1) == '0' && n < 3 {
		return 2
	}
	if n < 3 {
		l.errorSpan(p, p+1+n, ErrOctalDigits)
		return 1 + n
	}
	digits := l.cur[p+1 : p+4]
	v := 0
	for _, d := range digits {
		v = v*8 + int(d-'0')
	}
	if v > 0o377 {
		l.errorSpan(p, p+4, ErrOctalRange, string(digits))
	}
	return 4
}

// hexEscape handles \x, \u and \U escapes with exactly width hex digits.
func (l *Lexer) hexEscape(p, width int, limit rune) int {
	marker := l.at(p + 1)
	n := 0
	var v rune
	for n < width {
		c := l.at(p + 2 + n)
		if !isDigitOf(c, 16) {
			break
		}
		v = v*16 + rune(hexValue(c))
		n++
	}
	end := p + 2 + n
	if n < width {
		l.errorSpan(p, end, ErrHexDigits, marker, width)
		return end - p
	}
	switch {
	case v > limit:
		l.errorSpan(p, end, ErrCodepointRange, v)
	case marker != 'x' && v >= 0xD800 && v <= 0xDFFF:
		l.errorSpan(p, end, ErrSurrogate, v)
	}
	return end - p
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

// scanComment lexes a '//' or '///' comment to the end of the line, split
// into tokens of at most 255 bytes on rune boundaries.
func (l *Lexer) scanComment() {
	start := l.pos
	end := len(l.cur)
	l.pos = end
	if !l.opts.KeepComments {
		return
	}

	kind := token.Comment
	if l.at(start+2) == '/' {
		kind = token.DocComment
	}
	for off := start; off < end; {
		n := end - off
		if n > token.MaxSize {
			n = token.MaxSize
			for n > 0 && !utf8.RuneStart(l.cur[off+n]) {
				n--
			}
		}
		l.emit(kind, off, off+n, token.NoValue)
		off += n
	}
}

// scanShellWord lexes one whitespace-delimited word of a shell escape line.
func (l *Lexer) scanShellWord() {
	start := l.pos
	p := start
	for p < len(l.cur) && l.cur[p] != ' ' && l.cur[p] != '\t' {
		p++
	}
	l.pos = p
	idx := len(l.toks)
	at := token.Token{Kind: token.ShellWord, Line: uint32(l.line), Offset: uint32(start), Size: clampSize(p - start)}
	value := token.NoValue
	if p-start <= token.MaxSize {
		value = l.intern(l.cur[start:p], idx, at)
	}
	l.emit(token.ShellWord, start, p, value)
}
