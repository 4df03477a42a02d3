package parser

import (
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/lexer"
)

// rule names a grammar alternative that is tried speculatively.
type rule uint8

const (
	ruleTypedDecl rule = iota + 1
	ruleLambda
)

func (r rule) String() string {
	switch r {
	case ruleTypedDecl:
		return "typed declaration"
	case ruleLambda:
		return "lambda"
	default:
		return "unknown"
	}
}

type memoKey struct {
	pos  int
	rule rule
}

// snapshot is everything attempt must put back when an alternative fails.
type snapshot struct {
	cp      lexer.Checkpoint
	pos     int
	last    int
	errPos  int
	indent  int
	scope   ast.ScopeID
	mark    ast.Mark
	errors  int
	synErr  int
	tooDeep bool
}

func (p *Parser) save() snapshot {
	return snapshot{
		cp:      p.lx.Checkpoint(),
		pos:     p.pos,
		last:    p.last,
		errPos:  p.errPos,
		indent:  p.indent,
		scope:   p.scope,
		mark:    p.scopes.Mark(),
		errors:  p.diags.ErrorCount(),
		synErr:  p.synErr,
		tooDeep: p.tooDeep,
	}
}

func (p *Parser) restore(s snapshot) {
	p.lx.Restore(s.cp)
	p.pos = s.pos
	p.last = s.last
	p.errPos = s.errPos
	p.indent = s.indent
	p.scope = s.scope
	p.scopes.Reset(s.mark)
	p.synErr = s.synErr
	p.tooDeep = s.tooDeep
}

// attempt runs fn speculatively. fn succeeds when it returns true without
// recording an error. On failure the lexer, the diagnostics, the scope arena
// and the parser position are restored to their state before the call, so
// nothing fn did is observable. A rule that failed at a position is not run
// there again.
func (p *Parser) attempt(r rule, fn func() bool) bool {
	key := memoKey{pos: p.pos, rule: r}
	if _, failed := p.failed[key]; failed {
		return false
	}
	s := p.save()
	if fn() && p.diags.ErrorCount() == s.errors && p.synErr == s.synErr {
		return true
	}
	p.restore(s)
	p.failed[key] = struct{}{}
	return false
}
