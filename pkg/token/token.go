// Package token defines the lexical units of Quill source.
//
// A Kind is a 16-bit tag whose high byte selects a group (operator, keyword,
// type name, literal, identifier, comment, qualifier). Group membership is a
// single mask compare, so the lexer and parser never scan tables to classify
// a token.
package token

import "fmt"

// Kind identifies the type of a lexical token.
type Kind uint16

// Group is the high byte of a Kind.
type Group uint16

// Token groups.
const (
	GroupSpecial    Group = 0x0000
	GroupOperator   Group = 0x0100
	GroupKeyword    Group = 0x0200
	GroupTypeName   Group = 0x0300
	GroupLiteral    Group = 0x0400
	GroupIdentifier Group = 0x0500
	GroupComment    Group = 0x0600
	GroupQualifier  Group = 0x0700

	groupMask = 0xFF00
)

// Special tokens
const (
	EOF Kind = Kind(GroupSpecial) + iota
	Illegal
	Indent // line start; Value carries the indentation level
)

// Operators and punctuation
const (
	LParen Kind = Kind(GroupOperator) + iota
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	LAngle // generic list opener
	RAngle // generic list closer
	Comma
	Semicolon
	Colon
	Dot
	DotDot
	DotDotEq
	Scope    // ::
	Arrow    // ->
	FatArrow // =>
	At       // @ (annotation)
	Dollar   // $ (shell escape)

	Assign
	PlusAssign
	MinusAssign
	MulAssign
	DivAssign
	ModAssign
	AndAssign
	OrAssign
	XorAssign
	ShlAssign
	ShrAssign

	Plus
	Minus
	Mul
	Div
	Mod
	Power // **

	Eq
	NotEq
	Lt
	Gt
	LtEq
	GtEq

	AndAnd
	OrOr
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	Tilde

	Not       // prefix !
	Deref     // prefix *
	AddressOf // prefix &
	Question  // ternary ?
	Try       // postfix ?
	Unwrap    // postfix !
)

// Keywords
const (
	Fn Kind = Kind(GroupKeyword) + iota
	Let
	Var
	If
	Else
	While
	For
	In
	Loop
	Break
	Continue
	Return
	Match
	Defer
	Class
	Struct
	Union
	Variant
	Enum
	Interface
	Bitfield
	Type
	Import
	From
	As
	Is
	And
	Or
	NotKw
	True
	False
	Null
	Self
	Init
	Deinit
	Operator
	New
	Sizeof
	Yield
)

// Type names. TypeIdent is a user-defined type name; the rest are builtins.
const (
	TypeIdent Kind = Kind(GroupTypeName) + iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	Isize
	Usize
	F32
	F64
	Bool
	Char
	Str
	Void
	AnyType
)

// Literals. NumberSuffix and Unit are sub-tokens nested inside a Number.
const (
	Number Kind = Kind(GroupLiteral) + iota
	String
	RawString
	NumberSuffix
	Unit
	ShellWord
)

// Identifiers
const (
	Variable Kind = Kind(GroupIdentifier) + iota
	Function
	Module
	Constant
)

// Comments
const (
	Comment Kind = Kind(GroupComment) + iota
	DocComment
)

// Qualifiers and type modifiers
const (
	Pub Kind = Kind(GroupQualifier) + iota
	Priv
	Mut
	Static
	Extern
	Inline
	Const
	TypePointer   // * in a type
	TypeReference // & in a type
	TypeFallible  // ? in a type
	TypeNoReturn  // ! in a type
)

// Group returns the group of the kind.
func (k Kind) Group() Group {
	return Group(k & groupMask)
}

// In reports whether the kind belongs to g.
func (k Kind) In(g Group) bool {
	return Group(k&groupMask) == g
}

// IsSubToken reports whether k is nested inside a preceding literal token.
func (k Kind) IsSubToken() bool {
	return k == NumberSuffix || k == Unit
}

// IsTrivia reports whether the parser skips tokens of this kind.
func (k Kind) IsTrivia() bool {
	return k.In(GroupComment) || k.IsSubToken()
}

// IsOpener reports whether k pushes a lexer context.
func (k Kind) IsOpener() bool {
	switch k {
	case LParen, LBracket, LBrace, LAngle:
		return true
	}
	return false
}

// IsCloser reports whether k pops a lexer context.
func (k Kind) IsCloser() bool {
	switch k {
	case RParen, RBracket, RBrace, RAngle:
		return true
	}
	return false
}

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%#04x)", uint16(k))
}

// Text returns the fixed spelling of k, or "" for kinds whose text comes
// from the source (names, literals, comments).
func (k Kind) Text() string {
	if s, ok := spellings[k]; ok {
		return s
	}
	if b, ok := builtinByKind[k]; ok {
		return b.Text
	}
	return ""
}

// NoValue marks a token without an interned string.
const NoValue uint16 = 0xFFFF

// MaxSize is the largest byte size a single token can span.
const MaxSize = 255

// Token is a compact lexical record pointing back into its source line.
// Tokens never span lines: Offset+Size is bounded by the line length.
type Token struct {
	Kind   Kind
	Size   uint8
	Value  uint16 // interned string id, NoValue, or the level of an Indent
	Line   uint32 // 0-based line index
	Offset uint32 // byte offset within the line
}

// End returns the byte offset within the line just after the token.
func (t Token) End() uint32 {
	return t.Offset + uint32(t.Size)
}

// HasString reports whether the token carries an interned string id.
func (t Token) HasString() bool {
	return t.Kind != Indent && t.Value != NoValue
}

// Level returns the indentation level of an Indent token.
func (t Token) Level() int {
	if t.Kind != Indent {
		return 0
	}
	return int(t.Value)
}

var kindNames = map[Kind]string{
	EOF:     "EOF",
	Illegal: "ILLEGAL",
	Indent:  "INDENT",

	TypeIdent:    "TYPE_NAME",
	Number:       "NUMBER",
	String:       "STRING",
	RawString:    "RAW_STRING",
	NumberSuffix: "NUMBER_SUFFIX",
	Unit:         "UNIT",
	ShellWord:    "SHELL_WORD",
	Variable:     "VARIABLE",
	Function:     "FUNCTION",
	Module:       "MODULE",
	Constant:     "CONSTANT",
	Comment:      "COMMENT",
	DocComment:   "DOC_COMMENT",

	Not:           "NOT",
	Deref:         "DEREF",
	AddressOf:     "ADDRESS_OF",
	Question:      "TERNARY",
	Try:           "TRY",
	Unwrap:        "UNWRAP",
	TypePointer:   "TYPE_POINTER",
	TypeReference: "TYPE_REFERENCE",
	TypeFallible:  "TYPE_FALLIBLE",
	TypeNoReturn:  "TYPE_NO_RETURN",
	LAngle:        "LANGLE",
	RAngle:        "RANGLE",
	Lt:            "LT",
	Gt:            "GT",
	Mul:           "MUL",
	BitAnd:        "BIT_AND",
}

// spellings maps operator kinds to their source text. Kinds sharing a
// spelling (Mul/Deref/TypePointer) each have an entry.
var spellings = map[Kind]string{
	LParen:    "(",
	RParen:    ")",
	LBracket:  "[",
	RBracket:  "]",
	LBrace:    "{",
	RBrace:    "}",
	LAngle:    "<",
	RAngle:    ">",
	Comma:     ",",
	Semicolon: ";",
	Colon:     ":",
	Dot:       ".",
	DotDot:    "..",
	DotDotEq:  "..=",
	Scope:     "::",
	Arrow:     "->",
	FatArrow:  "=>",
	At:        "@",
	Dollar:    "$",

	Assign:      "=",
	PlusAssign:  "+=",
	MinusAssign: "-=",
	MulAssign:   "*=",
	DivAssign:   "/=",
	ModAssign:   "%=",
	AndAssign:   "&=",
	OrAssign:    "|=",
	XorAssign:   "^=",
	ShlAssign:   "<<=",
	ShrAssign:   ">>=",

	Plus:  "+",
	Minus: "-",
	Mul:   "*",
	Div:   "/",
	Mod:   "%",
	Power: "**",

	Eq:    "==",
	NotEq: "!=",
	Lt:    "<",
	Gt:    ">",
	LtEq:  "<=",
	GtEq:  ">=",

	AndAnd: "&&",
	OrOr:   "||",
	BitAnd: "&",
	BitOr:  "|",
	BitXor: "^",
	Shl:    "<<",
	Shr:    ">>",
	Tilde:  "~",

	Not:       "!",
	Deref:     "*",
	AddressOf: "&",
	Question:  "?",
	Try:       "?",
	Unwrap:    "!",

	TypePointer:   "*",
	TypeReference: "&",
	TypeFallible:  "?",
	TypeNoReturn:  "!",
}

func init() {
	for k, s := range spellings {
		if _, ok := kindNames[k]; !ok {
			kindNames[k] = s
		}
	}
	for _, b := range Builtins {
		if _, ok := kindNames[b.Kind]; !ok {
			kindNames[b.Kind] = b.Text
		}
	}
}
