package ast

import "github.com/quill-lang/quill/pkg/token"

// ---------- Type Nodes ----------

// TypeName is a named type, possibly qualified by module path and applied to
// generic arguments: io::Reader, Map<K, V>, i32. Builtin is the builtin type
// kind for builtin names and zero otherwise. Names are resolved later.
type TypeName struct {
	NodeInfo
	Path    []Name // module qualifiers, outermost first
	Name    Name
	Builtin token.Kind
	Args    []Type
}

func (*TypeName) typeNode() {}

// PointerType is *Elem.
type PointerType struct {
	NodeInfo
	Elem Type
}

func (*PointerType) typeNode() {}

// ReferenceType is &Elem.
type ReferenceType struct {
	NodeInfo
	Elem Type
}

func (*ReferenceType) typeNode() {}

// FallibleType is ?Elem.
type FallibleType struct {
	NodeInfo
	Elem Type
}

func (*FallibleType) typeNode() {}

// NoReturnType is the ! type of functions that never return.
type NoReturnType struct {
	NodeInfo
}

func (*NoReturnType) typeNode() {}

// ArrayType is [Elem] or [Elem; Len].
type ArrayType struct {
	NodeInfo
	Elem Type
	Len  Expr // nil for a slice
}

func (*ArrayType) typeNode() {}

// TupleType is (A, B, ...).
type TupleType struct {
	NodeInfo
	Elems []Type
}

func (*TupleType) typeNode() {}

// FuncType is fn(A, B) -> R.
type FuncType struct {
	NodeInfo
	Params []Type
	Result Type // nil when absent
}

func (*FuncType) typeNode() {}

// BadType stands in for a type that failed to parse.
type BadType struct {
	NodeInfo
}

func (*BadType) typeNode() {}
