package ast

import (
	"strings"

	"github.com/quill-lang/quill/pkg/token"
)

// Qualifiers is a set of declaration qualifiers.
type Qualifiers uint16

// Qualifier bits.
const (
	QualPub Qualifiers = 1 << iota
	QualPriv
	QualMut
	QualStatic
	QualExtern
	QualInline
	QualConst
)

var qualifierOrder = []struct {
	q    Qualifiers
	kind token.Kind
}{
	{QualPub, token.Pub},
	{QualPriv, token.Priv},
	{QualMut, token.Mut},
	{QualStatic, token.Static},
	{QualExtern, token.Extern},
	{QualInline, token.Inline},
	{QualConst, token.Const},
}

// QualifierOf returns the bit for a qualifier token kind, or 0.
func QualifierOf(k token.Kind) Qualifiers {
	for _, e := range qualifierOrder {
		if e.kind == k {
			return e.q
		}
	}
	return 0
}

// Has reports whether every bit of q2 is set.
func (q Qualifiers) Has(q2 Qualifiers) bool {
	return q&q2 == q2
}

func (q Qualifiers) String() string {
	var parts []string
	for _, e := range qualifierOrder {
		if q.Has(e.q) {
			parts = append(parts, e.kind.Text())
		}
	}
	return strings.Join(parts, " ")
}

// Annotation is @name or @name(args) before a declaration.
type Annotation struct {
	NodeInfo
	Name Name
	Args []*Arg
}

// Header holds what may precede any declaration.
type Header struct {
	Annotations []*Annotation
	Quals       Qualifiers
}

// ---------- Declarations ----------

// FuncDecl is a function or method.
type FuncDecl struct {
	NodeInfo
	Header
	Name     Name
	Generics []*GenericParam
	Params   []*Param
	Result   Type   // nil when absent
	Body     *Block // nil for a bodiless declaration
	Scope    ScopeID
}

func (*FuncDecl) declNode() {}

// GenericParam is one entry of <T, U: Bound = Default>.
type GenericParam struct {
	NodeInfo
	Name    Name
	Bound   Type // nil when absent
	Default Type // nil when absent
}

// Param is one entry of a function parameter list.
type Param struct {
	NodeInfo
	Quals   Qualifiers
	Name    Name
	Type    Type // nil when absent (lambda parameters)
	Default Expr // nil when absent
}

// AggregateDecl is a class, struct, union, variant, enum, interface or
// bitfield declaration.
type AggregateDecl struct {
	NodeInfo
	Header
	Kind     token.Kind
	Name     Name // NoName when anonymous
	Generics []*GenericParam
	Base     Type // underlying or parent type after ':', nil when absent
	Members  []Decl
	Scope    ScopeID
}

func (*AggregateDecl) declNode() {}

// FieldDecl is name: Type [= default] inside an aggregate. Width is set for
// bitfield members (name: Type : width).
type FieldDecl struct {
	NodeInfo
	Header
	Name    Name
	Type    Type
	Default Expr
	Width   Expr
}

func (*FieldDecl) declNode() {}

// CaseDecl is an enum or variant case: Name, Name = value or Name(Types).
type CaseDecl struct {
	NodeInfo
	Name   Name
	Value  Expr
	Fields []Type
}

func (*CaseDecl) declNode() {}

// InitDecl is a constructor.
type InitDecl struct {
	NodeInfo
	Header
	Params []*Param
	Body   *Block
	Scope  ScopeID
}

func (*InitDecl) declNode() {}

// DeinitDecl is a destructor.
type DeinitDecl struct {
	NodeInfo
	Header
	Body  *Block
	Scope ScopeID
}

func (*DeinitDecl) declNode() {}

// OperatorDecl is operator <op>(params) -> T body.
type OperatorDecl struct {
	NodeInfo
	Header
	Op     token.Kind
	Params []*Param
	Result Type
	Body   *Block
	Scope  ScopeID
}

func (*OperatorDecl) declNode() {}

// TypeAliasDecl is type Name<T> = Target.
type TypeAliasDecl struct {
	NodeInfo
	Header
	Name     Name
	Generics []*GenericParam
	Target   Type
}

func (*TypeAliasDecl) declNode() {}

// ImportDecl is import a::b [as c] or from a::b import x [as y], ....
type ImportDecl struct {
	NodeInfo
	Path  []Name
	Alias Name // NoName when absent
	Names []ImportName
}

func (*ImportDecl) declNode() {}

// ImportName is one name of a from-import.
type ImportName struct {
	Name  Name
	Alias Name
}

// VarDecl is let/var/const name[: Type] [= value], or a typed declaration
// Type name [= value] in which case Keyword is zero.
type VarDecl struct {
	NodeInfo
	Header
	Keyword token.Kind
	Name    Name
	Type    Type
	Value   Expr
}

func (*VarDecl) declNode() {}

// BadDecl stands in for a declaration that failed to parse.
type BadDecl struct {
	NodeInfo
}

func (*BadDecl) declNode() {}
