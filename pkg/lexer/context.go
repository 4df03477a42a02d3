package lexer

import "github.com/quill-lang/quill/pkg/token"

// ContextKind is the kind of a nesting context.
type ContextKind uint8

// Context kinds.
const (
	ContextTop ContextKind = iota
	ContextParen
	ContextSquare
	ContextCurly
	ContextAngle
	ContextAnnotation
	ContextShell
)

func (k ContextKind) String() string {
	switch k {
	case ContextTop:
		return "top level"
	case ContextParen:
		return "'('"
	case ContextSquare:
		return "'['"
	case ContextCurly:
		return "'{'"
	case ContextAngle:
		return "'<'"
	case ContextAnnotation:
		return "annotation"
	case ContextShell:
		return "shell escape"
	default:
		return "unknown"
	}
}

// Frame is one entry of the context stack.
type Frame struct {
	Kind      ContextKind
	Opener    int // token index of the opener, -1 for the base frame
	Ternaries int // '?' seen in this frame still waiting for their ':'
}

func openerContext(k token.Kind) ContextKind {
	switch k {
	case token.LParen:
		return ContextParen
	case token.LBracket:
		return ContextSquare
	case token.LBrace:
		return ContextCurly
	case token.LAngle:
		return ContextAngle
	}
	return ContextTop
}

func closerContext(k token.Kind) ContextKind {
	switch k {
	case token.RParen:
		return ContextParen
	case token.RBracket:
		return ContextSquare
	case token.RBrace:
		return ContextCurly
	case token.RAngle:
		return ContextAngle
	}
	return ContextTop
}

func (l *Lexer) top() *Frame {
	return &l.stack[len(l.stack)-1]
}

func (l *Lexer) push(kind ContextKind, opener int) {
	l.stack = append(l.stack, Frame{Kind: kind, Opener: opener})
}

// Depth returns the number of open contexts above the top level.
func (l *Lexer) Depth() int {
	return len(l.stack) - 1
}

// Stack returns a copy of the open contexts, outermost first, excluding the
// top level.
func (l *Lexer) Stack() []Frame {
	out := make([]Frame, len(l.stack)-1)
	copy(out, l.stack[1:])
	return out
}

// indentSensitive reports whether line starts produce Indent tokens.
func (l *Lexer) indentSensitive() bool {
	k := l.top().Kind
	return k == ContextTop || k == ContextCurly
}

// inType reports whether '*', '&', '?' and '!' read as type modifiers.
func (l *Lexer) inType() bool {
	return l.typeDepth >= 0 || l.top().Kind == ContextAngle
}

func (l *Lexer) enterType() {
	if l.typeDepth < 0 {
		l.typeDepth = l.Depth()
	}
}

func (l *Lexer) leaveTypeAt(depth int) {
	if l.typeDepth >= 0 && depth <= l.typeDepth {
		l.typeDepth = -1
	}
}

// open emits an opener token and pushes its context.
func (l *Lexer) open(kind token.Kind, n int) {
	if kind == token.LBrace {
		l.dropAngles()
		l.leaveTypeAt(l.Depth())
	}
	idx := l.emitOp(kind, n)
	l.push(openerContext(kind), idx)
}

// close emits a closer token. A closer that does not match the innermost
// context is reported once and leaves the stack untouched.
func (l *Lexer) close(kind token.Kind, n int) {
	want := closerContext(kind)
	if want != ContextAngle {
		l.dropAnglesFor(want)
	}
	l.leaveTypeAt(l.Depth())
	idx := l.emitOp(kind, n)

	top := l.top()
	if top.Kind != want {
		l.errorAt(idx, ErrMismatchedCloser, kind.Text(), top.Kind)
		return
	}
	l.stack = l.stack[:len(l.stack)-1]
	if l.typeDepth > l.Depth() {
		l.typeDepth = -1
	}
}

// dropAngles pops angle frames on top of the stack. A '<' guessed as a
// generic opener that is never closed by '>' is abandoned this way.
func (l *Lexer) dropAngles() {
	for len(l.stack) > 1 && l.top().Kind == ContextAngle {
		l.stack = l.stack[:len(l.stack)-1]
	}
}

// dropAnglesFor pops angle frames when some frame beneath them matches want.
func (l *Lexer) dropAnglesFor(want ContextKind) {
	if l.top().Kind != ContextAngle {
		return
	}
	for i := len(l.stack) - 1; i > 0; i-- {
		switch l.stack[i].Kind {
		case ContextAngle:
			continue
		case want:
			l.stack = l.stack[:i+1]
		}
		return
	}
}

// closeLine ends the contexts that cannot span lines.
func (l *Lexer) closeLine() {
	l.typeDepth = -1
	for len(l.stack) > 1 {
		k := l.top().Kind
		if k != ContextAnnotation && k != ContextShell && k != ContextAngle {
			return
		}
		l.stack = l.stack[:len(l.stack)-1]
	}
}
