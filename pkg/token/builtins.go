package token

// Builtin is a reserved spelling preloaded into every interner.
type Builtin struct {
	Text string
	Kind Kind
	// Pure keywords are never identifiers. The others become ordinary
	// callable names when immediately followed by '(', a generic '<' or a
	// reference marker '&'.
	Pure bool
}

// Builtins is the fixed spelling table. Its order is the id order inside
// the interner: the builtin with index i is interned with id i, so the
// lexer maps an id below NumBuiltins to its kind with one index.
var Builtins = []Builtin{
	{"fn", Fn, true},
	{"let", Let, true},
	{"var", Var, true},
	{"if", If, true},
	{"else", Else, true},
	{"while", While, true},
	{"for", For, true},
	{"in", In, false},
	{"loop", Loop, true},
	{"break", Break, true},
	{"continue", Continue, true},
	{"return", Return, true},
	{"match", Match, true},
	{"defer", Defer, true},
	{"class", Class, true},
	{"struct", Struct, true},
	{"union", Union, true},
	{"variant", Variant, true},
	{"enum", Enum, true},
	{"interface", Interface, true},
	{"bitfield", Bitfield, true},
	{"type", Type, false},
	{"import", Import, true},
	{"from", From, false},
	{"as", As, true},
	{"is", Is, true},
	{"and", And, true},
	{"or", Or, true},
	{"not", NotKw, true},
	{"true", True, true},
	{"false", False, true},
	{"null", Null, true},
	{"self", Self, false},
	{"init", Init, true},
	{"deinit", Deinit, true},
	{"operator", Operator, true},
	{"new", New, false},
	{"sizeof", Sizeof, false},
	{"yield", Yield, false},

	{"pub", Pub, true},
	{"priv", Priv, true},
	{"mut", Mut, true},
	{"static", Static, true},
	{"extern", Extern, true},
	{"inline", Inline, true},
	{"const", Const, true},

	{"i8", I8, true},
	{"i16", I16, true},
	{"i32", I32, true},
	{"i64", I64, true},
	{"u8", U8, true},
	{"u16", U16, true},
	{"u32", U32, true},
	{"u64", U64, true},
	{"isize", Isize, true},
	{"usize", Usize, true},
	{"f32", F32, true},
	{"f64", F64, true},
	{"bool", Bool, true},
	{"char", Char, true},
	{"str", Str, true},
	{"void", Void, true},
	{"any", AnyType, true},
}

// NumBuiltins is the size of the reserved low-id range.
var NumBuiltins = len(Builtins)

var builtinByKind = indexBuiltins()

func indexBuiltins() map[Kind]Builtin {
	m := make(map[Kind]Builtin, len(Builtins))
	for _, b := range Builtins {
		m[b.Kind] = b
	}
	return m
}

// Lookup returns the builtin spelled text, if any. It scans nothing: the
// map is built once from Builtins.
func Lookup(text string) (Builtin, bool) {
	b, ok := builtinByText[text]
	return b, ok
}

var builtinByText = func() map[string]Builtin {
	m := make(map[string]Builtin, len(Builtins))
	for _, b := range Builtins {
		m[b.Text] = b
	}
	return m
}()

// IsPure reports whether k is a reserved word that can never be an identifier.
func IsPure(k Kind) bool {
	b, ok := builtinByKind[k]
	return ok && b.Pure
}

// IsNumericSuffix reports whether k is a builtin type usable as a number suffix.
func IsNumericSuffix(k Kind) bool {
	return k >= I8 && k <= F64
}

// IsDeclIntroducer reports whether k starts a top-level declaration. The
// parser resynchronises at these.
func IsDeclIntroducer(k Kind) bool {
	switch k {
	case Fn, Class, Struct, Union, Variant, Enum, Interface, Bitfield, Type, Import, From,
		Let, Var, Const, Pub, Priv, Static, Extern, Inline, At:
		return true
	}
	return false
}
