package lexer

import (
	"slices"

	"github.com/quill-lang/quill/pkg/intern"
	"github.com/quill-lang/quill/pkg/token"
)

// Checkpoint is a saved scan position. Restoring it discards every token and
// diagnostic produced after it was taken.
type Checkpoint struct {
	Tokens      int
	Line        int
	Offset      int
	Indent      int
	PrevIndent  int
	Stack       []Frame
	TypeDepth   int
	AtLineStart bool
	LineHead    token.Kind
	HeadKnown   bool
	Diags       int
	Done        bool
}

// Checkpoint snapshots the scanner state.
func (l *Lexer) Checkpoint() Checkpoint {
	return Checkpoint{
		Tokens:      len(l.toks),
		Line:        l.line,
		Offset:      l.pos,
		Indent:      l.indent,
		PrevIndent:  l.prevIndent,
		Stack:       slices.Clone(l.stack),
		TypeDepth:   l.typeDepth,
		AtLineStart: l.atLineStart,
		LineHead:    l.lineHead,
		HeadKnown:   l.headKnown,
		Diags:       l.diags.Len(),
		Done:        l.done,
	}
}

// Restore rewinds the scanner to cp. cp must have been taken from this lexer
// and not be ahead of the current position.
func (l *Lexer) Restore(cp Checkpoint) {
	l.toks = l.toks[:cp.Tokens]
	l.diags.Truncate(cp.Diags)
	l.line = cp.Line
	l.pos = cp.Offset
	l.cur = l.src.Line(cp.Line)
	l.indent = cp.Indent
	l.prevIndent = cp.PrevIndent
	l.stack = slices.Clone(cp.Stack)
	l.typeDepth = cp.TypeDepth
	l.atLineStart = cp.AtLineStart
	l.lineHead = cp.LineHead
	l.headKnown = cp.HeadKnown
	l.done = cp.Done
}

// Equal reports whether two checkpoints describe the same scan position.
func (cp Checkpoint) Equal(other Checkpoint) bool {
	return cp.Tokens == other.Tokens &&
		cp.Line == other.Line &&
		cp.Offset == other.Offset &&
		cp.Indent == other.Indent &&
		cp.PrevIndent == other.PrevIndent &&
		slices.Equal(cp.Stack, other.Stack) &&
		cp.TypeDepth == other.TypeDepth &&
		cp.AtLineStart == other.AtLineStart &&
		cp.Diags == other.Diags &&
		cp.Done == other.Done
}

// NewStrings returns an interner preloaded with the builtin spellings so that
// id i is token.Builtins[i].
func NewStrings() *intern.Interner {
	strs := intern.New()
	preload(strs)
	return strs
}

func preload(strs *intern.Interner) {
	for i, b := range token.Builtins {
		id, err := strs.InsertUnique([]byte(b.Text))
		if err != nil || int(id) != i {
			panic("lexer: builtin table does not fit the interner")
		}
	}
}
