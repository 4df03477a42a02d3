// Package ast declares the syntax tree produced by the parser.
//
// The tree is made of four closed families of nodes: declarations, types,
// statements and expressions. Each family is an interface with an unexported
// marker method, so only this package can add variants and a type switch over
// a family is exhaustive by construction. Nodes refer to source text through
// token index ranges and to names through interned ids; they never point back
// into the lexer or the interner.
package ast

// Range is a half-open token index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of tokens in the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether token index i lies in the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// NodeInfo holds the data common to every node.
type NodeInfo struct {
	Range Range
}

// Span returns the node's token range.
func (n *NodeInfo) Span() Range {
	return n.Range
}

// Node is the base interface for all AST nodes.
type Node interface {
	Span() Range
}

// Decl is a marker interface for declaration nodes.
type Decl interface {
	Node
	declNode()
}

// Type is a marker interface for type nodes.
type Type interface {
	Node
	typeNode()
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// NoName marks an absent name, e.g. an anonymous aggregate.
const NoName uint16 = 0xFFFF

// Name is a declared or referenced name: its interned id and the index of
// the token that spelled it.
type Name struct {
	ID  uint16
	Tok int
}

// Valid reports whether the name is present.
func (n Name) Valid() bool {
	return n.ID != NoName
}

// File is the root of one parsed source unit.
type File struct {
	NodeInfo
	Path   string
	Items  []Stmt // top-level declarations (as *DeclStmt) and statements in order
	Scopes *Scopes
	Scope  ScopeID // file scope
}

// Decls returns the top-level declarations in source order.
func (f *File) Decls() []Decl {
	var out []Decl
	for _, s := range f.Items {
		if d, ok := s.(*DeclStmt); ok {
			out = append(out, d.Decl)
		}
	}
	return out
}
