// Package source holds a compilation unit's bytes together with a line index.
package source

import (
	"fmt"
	"os"
	"sort"

	"github.com/quill-lang/quill/pkg/token"
)

// File is one source buffer. Data is never modified after construction.
type File struct {
	Path  string
	Data  []byte
	Lines []int // byte offsets of line starts
}

// New builds a file from bytes already in memory.
func New(path string, data []byte) *File {
	return &File{
		Path:  path,
		Data:  data,
		Lines: computeLineOffsets(data),
	}
}

// NewString builds a file from a string.
func NewString(path, text string) *File {
	return New(path, []byte(text))
}

// Load reads a file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", path, err)
	}
	return New(path, data), nil
}

func computeLineOffsets(data []byte) []int {
	offsets := []int{0}
	for i, c := range data {
		if c == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// LineCount returns the number of physical lines.
func (f *File) LineCount() int {
	return len(f.Lines)
}

// Line returns line i without its terminator. A trailing '\r' is dropped.
func (f *File) Line(i int) []byte {
	if i < 0 || i >= len(f.Lines) {
		return nil
	}
	start := f.Lines[i]
	end := len(f.Data)
	if i+1 < len(f.Lines) {
		end = f.Lines[i+1] - 1
	}
	if end > start && f.Data[end-1] == '\r' {
		end--
	}
	return f.Data[start:end:end]
}

// Text returns the source text a token covers.
func (f *File) Text(t token.Token) []byte {
	line := f.Line(int(t.Line))
	end := int(t.End())
	if int(t.Offset) > len(line) || end > len(line) {
		return nil
	}
	return line[t.Offset:end]
}

// Span converts a token into a source span.
func (f *File) Span(t token.Token) token.Span {
	start := 0
	if int(t.Line) < len(f.Lines) {
		start = f.Lines[t.Line]
	}
	return token.SpanOf(t, start)
}

// Position returns the 1-based position of a byte offset.
func (f *File) Position(offset int) token.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Data) {
		offset = len(f.Data)
	}
	line := sort.Search(len(f.Lines), func(i int) bool { return f.Lines[i] > offset }) - 1
	return token.Position{Line: line + 1, Column: offset - f.Lines[line] + 1, Offset: offset}
}

// Offset converts a 0-based line and byte column into a file offset.
func (f *File) Offset(line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= len(f.Lines) {
		return len(f.Data)
	}
	off := f.Lines[line] + col
	if off > len(f.Data) {
		return len(f.Data)
	}
	return off
}
