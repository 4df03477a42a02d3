package diag

import "strings"

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError marks input the front end cannot accept.
	SeverityError Severity = iota
	// SeverityWarning marks accepted input that is likely a mistake.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
	// SeverityHint indicates a suggestion for improvement.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "hint":
		return SeverityHint, true
	default:
		return SeverityWarning, false
	}
}

// Category is the error taxonomy a diagnostic belongs to.
type Category int

// Diagnostic categories.
const (
	// Lexical problems: illegal characters, bad escapes, unterminated
	// literals, unbalanced brackets.
	Lexical Category = iota
	// Syntax problems found by the parser.
	Syntax
	// Resource limits: interner capacity, token caps.
	Resource
)

func (c Category) String() string {
	switch c {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Resource:
		return "resource"
	default:
		return "unknown"
	}
}
