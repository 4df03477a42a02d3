package ast

import "github.com/quill-lang/quill/pkg/token"

// ---------- Expressions ----------

// Ident is a name in expression position. Kind is the token kind it was
// lexed as (Variable, Function, Module, Constant, TypeIdent, Self or a
// builtin type name).
type Ident struct {
	NodeInfo
	Name Name
	Kind token.Kind
}

func (*Ident) exprNode() {}

// Literal is a number, string, boolean or null literal. Value is the
// interned source text; Number literals include suffix and unit.
type Literal struct {
	NodeInfo
	Kind  token.Kind
	Value uint16
}

func (*Literal) exprNode() {}

// UnaryExpr is a prefix operator applied to X.
type UnaryExpr struct {
	NodeInfo
	Op token.Kind
	X  Expr
}

func (*UnaryExpr) exprNode() {}

// PostfixExpr is X followed by ?, ! or a reference marker &.
type PostfixExpr struct {
	NodeInfo
	Op token.Kind
	X  Expr
}

func (*PostfixExpr) exprNode() {}

// BinaryExpr is X op Y, including assignments and ranges.
type BinaryExpr struct {
	NodeInfo
	Op token.Kind
	X  Expr
	Y  Expr
}

func (*BinaryExpr) exprNode() {}

// TernaryExpr is cond ? then : else.
type TernaryExpr struct {
	NodeInfo
	Cond Expr
	Then Expr
	Else Expr
}

func (*TernaryExpr) exprNode() {}

// CastExpr is X as Type or X is Type.
type CastExpr struct {
	NodeInfo
	Op   token.Kind
	X    Expr
	Type Type
}

func (*CastExpr) exprNode() {}

// Arg is one call argument, optionally named.
type Arg struct {
	NodeInfo
	Name  Name // NoName for positional arguments
	Value Expr
}

// CallExpr is Fun(args).
type CallExpr struct {
	NodeInfo
	Fun  Expr
	Args []*Arg
}

func (*CallExpr) exprNode() {}

// GenericExpr is X<Types>, an explicit instantiation.
type GenericExpr struct {
	NodeInfo
	X    Expr
	Args []Type
}

func (*GenericExpr) exprNode() {}

// IndexExpr is X[Index].
type IndexExpr struct {
	NodeInfo
	X     Expr
	Index Expr
}

func (*IndexExpr) exprNode() {}

// SliceExpr is X[Lo:Hi]; either bound may be nil.
type SliceExpr struct {
	NodeInfo
	X  Expr
	Lo Expr
	Hi Expr
}

func (*SliceExpr) exprNode() {}

// MemberExpr is X.Name.
type MemberExpr struct {
	NodeInfo
	X    Expr
	Name Name
}

func (*MemberExpr) exprNode() {}

// ScopeExpr is X::Name.
type ScopeExpr struct {
	NodeInfo
	X    Expr
	Name Name
}

func (*ScopeExpr) exprNode() {}

// ParenExpr is (X).
type ParenExpr struct {
	NodeInfo
	X Expr
}

func (*ParenExpr) exprNode() {}

// TupleExpr is (a, b, ...) or ().
type TupleExpr struct {
	NodeInfo
	Elems []Expr
}

func (*TupleExpr) exprNode() {}

// ArrayExpr is [a, b, ...].
type ArrayExpr struct {
	NodeInfo
	Elems []Expr
}

func (*ArrayExpr) exprNode() {}

// LambdaExpr is (params) [-> T] => body. Body is an Expr or a *Block.
type LambdaExpr struct {
	NodeInfo
	Params []*Param
	Result Type
	Body   Node
	Scope  ScopeID
}

func (*LambdaExpr) exprNode() {}

// NewExpr is new Type(args).
type NewExpr struct {
	NodeInfo
	Type Type
	Args []*Arg
}

func (*NewExpr) exprNode() {}

// BadExpr stands in for an expression that failed to parse.
type BadExpr struct {
	NodeInfo
}

func (*BadExpr) exprNode() {}
