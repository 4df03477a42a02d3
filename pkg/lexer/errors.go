package lexer

// Lexer diagnostic messages.
const (
	ErrIllegalChar      = "unexpected character %q"
	ErrInvalidUTF8      = "invalid UTF-8 encoding"
	ErrTokenTooLong     = "token longer than 255 bytes"
	ErrTooManyNames     = "too many distinct names in one unit"
	ErrSharedHash       = "too many distinct names share one hash"
	ErrTokenLimit       = "token limit of %d exceeded"
	ErrMismatchedCloser = "mismatched %q, innermost open context is %s"
	ErrUnclosed         = "unclosed %s"
	ErrUnterminated     = "unterminated string literal"
	ErrUnknownEscape    = "unknown escape sequence \\%c"
	ErrOctalDigits      = "octal escape needs exactly 3 digits"
	ErrOctalRange       = "octal escape \\%s exceeds \\377"
	ErrHexDigits        = "\\%c escape needs exactly %d hex digits"
	ErrCodepointRange   = "code point U+%X is out of range"
	ErrSurrogate        = "code point U+%X is a surrogate"
	ErrMissingDigits    = "missing digits after base prefix"
	ErrInvalidDigit     = "invalid digit %q in base %d literal"
	ErrMalformedSuffix  = "malformed numeric suffix %q"
)
