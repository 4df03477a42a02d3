// Package diag collects the diagnostics produced while lexing and parsing a unit.
package diag

import (
	"fmt"
	"sort"

	"github.com/quill-lang/quill/pkg/token"
)

// Diagnostic is one message attached to a token.
type Diagnostic struct {
	Index    int         // index of the token in the unit's token slice
	At       token.Token // copy of that token's record
	Severity Severity
	Category Category
	Message  string
}

// Error implements error. Lines and columns are 1-based.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.At.Line+1, d.At.Offset+1, d.Severity, d.Message)
}

// Format renders the diagnostic with a file path prefix.
func (d *Diagnostic) Format(path string) string {
	return fmt.Sprintf("%s:%s", path, d.Error())
}

// List accumulates diagnostics for one unit. The zero value is ready to use.
type List struct {
	items []Diagnostic
	// Limit caps the number of error-severity diagnostics kept. Zero means
	// no cap.
	Limit  int
	errors int
}

// Add appends d. It reports false when the error limit dropped it.
func (l *List) Add(d Diagnostic) bool {
	if d.Severity == SeverityError {
		if l.Limit > 0 && l.errors >= l.Limit {
			return false
		}
		l.errors++
	}
	l.items = append(l.items, d)
	return true
}

// Errorf records an error-severity diagnostic.
func (l *List) Errorf(cat Category, index int, at token.Token, format string, args ...any) {
	l.Add(Diagnostic{
		Index:    index,
		At:       at,
		Severity: SeverityError,
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf records a warning.
func (l *List) Warnf(cat Category, index int, at token.Token, format string, args ...any) {
	l.Add(Diagnostic{
		Index:    index,
		At:       at,
		Severity: SeverityWarning,
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Len returns the number of diagnostics.
func (l *List) Len() int {
	return len(l.items)
}

// Full reports whether the error limit has been reached.
func (l *List) Full() bool {
	return l.Limit > 0 && l.errors >= l.Limit
}

// Truncate drops every diagnostic at or after position n.
func (l *List) Truncate(n int) {
	if n < 0 || n >= len(l.items) {
		return
	}
	for _, d := range l.items[n:] {
		if d.Severity == SeverityError {
			l.errors--
		}
	}
	l.items = l.items[:n]
}

// Items returns the diagnostics in the order they were recorded.
func (l *List) Items() []Diagnostic {
	return l.items
}

// Sorted returns a copy ordered by source position.
func (l *List) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].At, out[j].At
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Offset < b.Offset
	})
	return out
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (l *List) HasErrors() bool {
	return l.errors > 0
}

// ErrorCount returns the number of error-severity diagnostics.
func (l *List) ErrorCount() int {
	return l.errors
}

// Err returns the first error-severity diagnostic, or nil.
func (l *List) Err() error {
	for i := range l.items {
		if l.items[i].Severity == SeverityError {
			return &l.items[i]
		}
	}
	return nil
}
