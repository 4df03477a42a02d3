package token

// Position represents a location in the source code.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number (bytes)
	Offset int // 0-based byte offset from the start of the file
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}

// SpanOf returns the span a token covers, given the byte offset of its line.
func SpanOf(t Token, lineStart int) Span {
	start := lineStart + int(t.Offset)
	return Span{
		Start: Position{Line: int(t.Line) + 1, Column: int(t.Offset) + 1, Offset: start},
		End:   Position{Line: int(t.Line) + 1, Column: int(t.End()) + 1, Offset: start + int(t.Size)},
	}
}
