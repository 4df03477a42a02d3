package lexer_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/quill-lang/quill/pkg/diag"
	"github.com/quill-lang/quill/pkg/intern"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/quill-lang/quill/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLexer(src string, opts lexer.Options) *lexer.Lexer {
	return lexer.New(source.NewString("test.q", src), nil, opts)
}

// kinds lexes src and returns every kind except the trailing EOF.
func kinds(t *testing.T, src string, opts lexer.Options) []token.Kind {
	t.Helper()
	toks := newLexer(src, opts).All()
	require.NotEmpty(t, toks)
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)
	out := make([]token.Kind, 0, len(toks)-1)
	for _, tok := range toks[:len(toks)-1] {
		out = append(out, tok.Kind)
	}
	return out
}

// ---------- Operator disambiguation ----------

func TestOperatorDisambiguation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "binary multiplication",
			src:  "a * b",
			want: []token.Kind{token.Indent, token.Variable, token.Mul, token.Variable},
		},
		{
			name: "dereference at expression start",
			src:  "*a",
			want: []token.Kind{token.Indent, token.Deref, token.Variable},
		},
		{
			name: "power and compound assignment",
			src:  "a ** b *= c",
			want: []token.Kind{token.Indent, token.Variable, token.Power, token.Variable, token.MulAssign, token.Variable},
		},
		{
			name: "generic angle brackets",
			src:  "x<T>",
			want: []token.Kind{token.Indent, token.Function, token.LAngle, token.TypeIdent, token.RAngle},
		},
		{
			name: "comparison with spaces",
			src:  "a < b",
			want: []token.Kind{token.Indent, token.Variable, token.Lt, token.Variable},
		},
		{
			name: "comparison against a single capital before a block",
			src:  "if i<N {}",
			want: []token.Kind{
				token.Indent, token.If, token.Variable, token.Lt, token.TypeIdent, token.LBrace, token.RBrace,
			},
		},
		{
			name: "comparison against a type name at line end",
			src:  "ok = n < Max",
			want: []token.Kind{token.Indent, token.Variable, token.Assign, token.Variable, token.Lt, token.TypeIdent},
		},
		{
			name: "comparison inside call arguments",
			src:  "f(i<N)",
			want: []token.Kind{
				token.Indent, token.Function, token.LParen, token.Variable, token.Lt, token.TypeIdent, token.RParen,
			},
		},
		{
			name: "comparison against lowercase",
			src:  "a<b",
			want: []token.Kind{token.Indent, token.Variable, token.Lt, token.Variable},
		},
		{
			name: "address of",
			src:  "p = &x",
			want: []token.Kind{token.Indent, token.Variable, token.Assign, token.AddressOf, token.Variable},
		},
		{
			name: "bitwise and",
			src:  "a & b",
			want: []token.Kind{token.Indent, token.Variable, token.BitAnd, token.Variable},
		},
		{
			name: "logical and",
			src:  "a&&b",
			want: []token.Kind{token.Indent, token.Variable, token.AndAnd, token.Variable},
		},
		{
			name: "function reference marker",
			src:  "apply(f&)",
			want: []token.Kind{token.Indent, token.Function, token.LParen, token.Function, token.TypeReference, token.RParen},
		},
		{
			name: "ternary",
			src:  "a ? b : c",
			want: []token.Kind{token.Indent, token.Variable, token.Question, token.Variable, token.Colon, token.Variable},
		},
		{
			name: "try operator",
			src:  "f()?",
			want: []token.Kind{token.Indent, token.Function, token.LParen, token.RParen, token.Try},
		},
		{
			name: "unwrap",
			src:  "x!",
			want: []token.Kind{token.Indent, token.Variable, token.Unwrap},
		},
		{
			name: "not",
			src:  "!x",
			want: []token.Kind{token.Indent, token.Not, token.Variable},
		},
		{
			name: "not equal",
			src:  "a != b",
			want: []token.Kind{token.Indent, token.Variable, token.NotEq, token.Variable},
		},
		{
			name: "shifts and ranges",
			src:  "a << 1 >> 2 .. 3 ..= 4",
			want: []token.Kind{
				token.Indent, token.Variable, token.Shl, token.Number, token.Shr, token.Number,
				token.DotDot, token.Number, token.DotDotEq, token.Number,
			},
		},
		{
			name: "arrows and scope",
			src:  "a -> b => c::d",
			want: []token.Kind{token.Indent, token.Variable, token.Arrow, token.Variable, token.FatArrow, token.Module, token.Scope, token.Variable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(t, tt.src, lexer.Options{}))
		})
	}
}

func TestTypeContext(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "pointer annotation",
			src:  "let p: *i32 = &x",
			want: []token.Kind{
				token.Indent, token.Let, token.Variable, token.Colon, token.TypePointer, token.I32,
				token.Assign, token.AddressOf, token.Variable,
			},
		},
		{
			name: "parameters and return type",
			src:  "fn f(a: &T) -> ?T:",
			want: []token.Kind{
				token.Indent, token.Fn, token.Function, token.LParen, token.Variable, token.Colon,
				token.TypeReference, token.TypeIdent, token.RParen, token.Arrow, token.TypeFallible,
				token.TypeIdent, token.Colon,
			},
		},
		{
			name: "no return",
			src:  "fn exit() -> !",
			want: []token.Kind{
				token.Indent, token.Fn, token.Function, token.LParen, token.RParen, token.Arrow, token.TypeNoReturn,
			},
		},
		{
			name: "generic annotation",
			src:  "let m: Map<K, V> = x",
			want: []token.Kind{
				token.Indent, token.Let, token.Variable, token.Colon, token.TypeIdent, token.LAngle,
				token.TypeIdent, token.Comma, token.TypeIdent, token.RAngle, token.Assign, token.Variable,
			},
		},
		{
			name: "nested generics split closing angles",
			src:  "x: Vec<Vec<T>> = y",
			want: []token.Kind{
				token.Indent, token.Variable, token.Colon, token.TypeIdent, token.LAngle, token.TypeIdent,
				token.LAngle, token.TypeIdent, token.RAngle, token.RAngle, token.Assign, token.Variable,
			},
		},
		{
			name: "cast ends at a binary operator",
			src:  "x as i32 * 2",
			want: []token.Kind{token.Indent, token.Variable, token.As, token.I32, token.Mul, token.Number},
		},
		{
			name: "block colon after control keyword",
			src:  "if ready: *p = 1",
			want: []token.Kind{
				token.Indent, token.If, token.Variable, token.Colon, token.Deref, token.Variable,
				token.Assign, token.Number,
			},
		},
		{
			name: "slice colon",
			src:  "a[lo:*p]",
			want: []token.Kind{
				token.Indent, token.Variable, token.LBracket, token.Variable, token.Colon, token.Deref,
				token.Variable, token.RBracket,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(t, tt.src, lexer.Options{}))
		})
	}
}

// ---------- Identifiers ----------

func TestIdentifierClassification(t *testing.T) {
	tests := []struct {
		src  string
		want token.Kind
	}{
		{"Point", token.TypeIdent},
		{"T", token.TypeIdent},
		{"MAX_LEN", token.Constant},
		{"X1", token.Constant},
		{"foo", token.Variable},
		{"_", token.Variable},
		{"foo()", token.Function},
		{"io::x", token.Module},
		{"Color::Red", token.TypeIdent},
		{"self", token.Self},
		{"self()", token.Function},
		{"new()", token.Function},
		{"fn()", token.Fn},
		{"while()", token.While},
		{"i32", token.I32},
		{"Fn", token.TypeIdent},
		{"größe", token.Variable},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := kinds(t, tt.src, lexer.Options{})
			require.GreaterOrEqual(t, len(got), 2)
			assert.Equal(t, tt.want, got[1])
		})
	}
}

func TestInternedValues(t *testing.T) {
	l := newLexer("foo bar foo fn", lexer.Options{})
	toks := l.All()
	require.Len(t, toks, 6)

	assert.Equal(t, toks[1].Value, toks[3].Value)
	assert.NotEqual(t, toks[1].Value, toks[2].Value)
	assert.Equal(t, "foo", l.Name(1))
	assert.Equal(t, "bar", l.Name(2))

	// builtins occupy the low id range in table order
	assert.Equal(t, uint16(0), toks[4].Value)
	assert.Equal(t, token.Builtins[0].Kind, toks[4].Kind)
}

// ---------- Brackets ----------

func TestBracketBalance(t *testing.T) {
	l := newLexer("f(a[1], {b: 2}, (c))\nfoo(\n  1,\n  2)\n", lexer.Options{})
	l.All()
	assert.Equal(t, 0, l.Depth())
	assert.Empty(t, l.Stack())
	assert.Equal(t, 0, l.Diagnostics().Len())
}

func TestStackTracksOpenContexts(t *testing.T) {
	l := newLexer("f(a[1])", lexer.Options{})
	for {
		_, ok := l.Next()
		require.True(t, ok)
		toks := l.Tokens()
		if toks[len(toks)-1].Kind == token.LBracket {
			break
		}
	}

	assert.Equal(t, []lexer.Frame{
		{Kind: lexer.ContextParen, Opener: 2},
		{Kind: lexer.ContextSquare, Opener: 4},
	}, l.Stack())

	l.All()
	assert.Empty(t, l.Stack())
}

func TestMismatchedCloser(t *testing.T) {
	l := newLexer("f(a))\ng(b)", lexer.Options{})
	toks := l.All()

	items := l.Diagnostics().Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Index)
	assert.Equal(t, token.RParen, toks[5].Kind)
	assert.Equal(t, diag.Lexical, items[0].Category)
	assert.Equal(t, 0, l.Depth())

	// scanning continued past the error
	assert.Equal(t, token.Function, toks[7].Kind)
}

func TestMismatchedCloserKind(t *testing.T) {
	l := newLexer("f(a]", lexer.Options{})
	l.All()

	items := l.Diagnostics().Items()
	require.Len(t, items, 2)
	assert.Contains(t, items[0].Message, "mismatched")
	assert.Equal(t, "unclosed '('", items[1].Message)
}

func TestUnclosedBracket(t *testing.T) {
	l := newLexer("f(a", lexer.Options{})
	toks := l.All()

	items := l.Diagnostics().Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Index)
	assert.Equal(t, token.LParen, toks[2].Kind)
	assert.Equal(t, "unclosed '('", items[0].Message)
}

// ---------- Indentation ----------

func TestIndentTokens(t *testing.T) {
	src := "fn main():\n    x = 1\n\n    y = 2\n\tz = 3\n"
	l := newLexer(src, lexer.Options{TabWidth: 8})
	toks := l.All()

	var levels []int
	for _, tok := range toks {
		if tok.Kind == token.Indent {
			levels = append(levels, tok.Level())
		}
	}
	assert.Equal(t, []int{0, 4, 4, 8}, levels)
	assert.Equal(t, 8, l.Indent())
	assert.Equal(t, 4, l.PrevIndent())
}

func TestNoIndentInsideParens(t *testing.T) {
	got := kinds(t, "f(\n  a,\n  b)\n", lexer.Options{})
	assert.Equal(t, []token.Kind{
		token.Indent, token.Function, token.LParen, token.Variable, token.Comma, token.Variable, token.RParen,
	}, got)
}

func TestIndentInsideBraces(t *testing.T) {
	got := kinds(t, "s {\n  a\n}", lexer.Options{})
	assert.Equal(t, []token.Kind{
		token.Indent, token.Variable, token.LBrace, token.Indent, token.Variable, token.Indent, token.RBrace,
	}, got)
}

// ---------- Numbers ----------

func TestNumericSuffix(t *testing.T) {
	l := newLexer("123u8", lexer.Options{})
	toks := l.All()
	require.Len(t, toks, 3)
	assert.Equal(t, token.Number, toks[1].Kind)
	assert.Equal(t, uint8(5), toks[1].Size)
	assert.Equal(t, "123u8", l.Text(1))

	l = newLexer("123u8", lexer.Options{SubTokens: true})
	toks = l.All()
	require.Len(t, toks, 4)
	assert.Equal(t, token.Number, toks[1].Kind)
	assert.Equal(t, uint8(5), toks[1].Size)
	assert.Equal(t, token.NumberSuffix, toks[2].Kind)
	assert.Equal(t, uint32(3), toks[2].Offset)
	assert.Equal(t, uint8(2), toks[2].Size)
	assert.Equal(t, "u8", l.Text(2))
}

func TestNumberForms(t *testing.T) {
	tests := []struct {
		src   string
		text  string
		diags int
	}{
		{"0xFF_FF", "0xFF_FF", 0},
		{"0b1010_1010", "0b1010_1010", 0},
		{"0o17", "0o17", 0},
		{"1'000'000", "1'000'000", 0},
		{"3.14e-2f64", "3.14e-2f64", 0},
		{"0x1.p3", "0x1", 0},
		{"0x1p3", "0x1p3", 0},
		{"-42i64", "-42i64", 0},
		{"0b102", "0b102", 1},
		{"0x", "0x", 1},
		{"1e", "1", 1},
		{"12abc", "12", 1},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			l := newLexer(tt.src, lexer.Options{})
			toks := l.All()
			require.Greater(t, len(toks), 2)
			assert.Equal(t, token.Number, toks[1].Kind)
			assert.Equal(t, tt.text, l.Text(1))
			assert.Equal(t, tt.diags, l.Diagnostics().Len())
		})
	}
}

func TestSignOnlyInPrefixPosition(t *testing.T) {
	assert.Equal(t, []token.Kind{token.Indent, token.Variable, token.Assign, token.Number},
		kinds(t, "x = -5", lexer.Options{}))
	assert.Equal(t, []token.Kind{token.Indent, token.Variable, token.Minus, token.Number},
		kinds(t, "x -5", lexer.Options{}))
}

func TestUnits(t *testing.T) {
	l := newLexer("9.81 m/s²", lexer.Options{SubTokens: true})
	toks := l.All()
	require.Len(t, toks, 4)
	assert.Equal(t, "9.81 m/s²", l.Text(1))
	assert.Equal(t, token.Unit, toks[2].Kind)
	assert.Equal(t, "m/s²", l.Text(2))
	assert.Equal(t, "m/s2", l.Name(2), "unit text is NFKC-normalised")

	micro := newLexer("5 \u00B5s", lexer.Options{SubTokens: true})
	mu := newLexer("5 \u03BCs", lexer.Options{SubTokens: true})
	micro.All()
	mu.All()
	assert.Equal(t, mu.Name(2), micro.Name(2))
}

func TestUnitLosesToKeywords(t *testing.T) {
	assert.Equal(t, []token.Kind{token.Indent, token.Number, token.As, token.I32},
		kinds(t, "2 as i32", lexer.Options{}))
	assert.Equal(t, []token.Kind{token.Indent, token.Number, token.Is, token.TypeIdent},
		kinds(t, "2 is Meter", lexer.Options{}))
	assert.Equal(t, []token.Kind{token.Indent, token.Number, token.Mod, token.Number},
		kinds(t, "10 % 3", lexer.Options{}))
	assert.Equal(t, []token.Kind{token.Indent, token.Number, token.Mul, token.Variable},
		kinds(t, "2 * x", lexer.Options{}))
}

// ---------- Strings ----------

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		diags int
	}{
		{"valid", `"a\n\t\x41\u0041\U01F600\0\101\{\}"`, 0},
		{"raw ignores backslashes", `'C:\path\q'`, 0},
		{"unknown escape", `"\q"`, 1},
		{"short hex", `"\x4"`, 1},
		{"short unicode", `"\u12"`, 1},
		{"code point out of range", `"\U110000"`, 1},
		{"surrogate", `"\uD800"`, 1},
		{"octal out of range", `"\777"`, 1},
		{"short octal", `"\12"`, 1},
		{"two problems", `"\q\x"`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLexer(tt.src, lexer.Options{})
			toks := l.All()
			require.Len(t, toks, 3)
			assert.True(t, toks[1].Kind == token.String || toks[1].Kind == token.RawString)
			assert.Equal(t, tt.diags, l.Diagnostics().Len())
			for _, d := range l.Diagnostics().Items() {
				assert.Equal(t, 1, d.Index)
			}
		})
	}
}

func TestUnterminatedStringStopsScan(t *testing.T) {
	l := newLexer("x = \"abc\ny = 2", lexer.Options{})
	got := l.All()

	require.True(t, l.Done())
	assert.Equal(t, token.Illegal, got[3].Kind)
	assert.Equal(t, token.EOF, got[4].Kind)
	require.Equal(t, 1, l.Diagnostics().Len())
	assert.Equal(t, lexer.ErrUnterminated, l.Diagnostics().Items()[0].Message)
}

// ---------- Comments and shell ----------

func TestComments(t *testing.T) {
	src := "x // note\n/// doc\n"
	assert.Equal(t, []token.Kind{token.Indent, token.Variable}, kinds(t, src, lexer.Options{}))
	assert.Equal(t, []token.Kind{token.Indent, token.Variable, token.Comment, token.DocComment},
		kinds(t, src, lexer.Options{KeepComments: true}))
}

func TestLongCommentIsChunked(t *testing.T) {
	src := "// " + strings.Repeat("a", 300)
	l := newLexer(src, lexer.Options{KeepComments: true})
	toks := l.All()
	require.Len(t, toks, 3)
	assert.Equal(t, uint8(255), toks[0].Size)
	assert.Equal(t, uint32(255), toks[1].Offset)
	assert.Equal(t, uint8(48), toks[1].Size)
}

func TestShellEscape(t *testing.T) {
	l := newLexer("$ ls -la\nx", lexer.Options{})
	assert.Equal(t, []token.Kind{
		token.Indent, token.Dollar, token.ShellWord, token.ShellWord, token.Indent, token.Variable,
	}, kinds(t, "$ ls -la\nx", lexer.Options{}))

	l.All()
	assert.Equal(t, "-la", l.Name(3))
	assert.Equal(t, 0, l.Depth())
}

func TestAnnotationClosesAtLineEnd(t *testing.T) {
	l := newLexer("@inline\nfn f()", lexer.Options{})
	toks := l.All()
	assert.Equal(t, token.At, toks[1].Kind)
	assert.Equal(t, token.Inline, toks[2].Kind)
	assert.Equal(t, 0, l.Depth())
	assert.Equal(t, 0, l.Diagnostics().Len())
}

// ---------- Checkpoints and limits ----------

func TestCheckpointRestore(t *testing.T) {
	l := newLexer("let x = foo(1, 2)\nlet y: *T = 3\n", lexer.Options{})

	for i := 0; i < 4; i++ {
		_, ok := l.Next()
		require.True(t, ok)
	}
	cp := l.Checkpoint()
	before := append([]token.Token(nil), l.Tokens()...)

	all := append([]token.Token(nil), l.All()...)
	require.True(t, l.Done())

	l.Restore(cp)
	assert.True(t, cp.Equal(l.Checkpoint()))
	assert.Equal(t, before, l.Tokens())
	assert.False(t, l.Done())

	assert.Equal(t, all, l.All(), "re-scanning after restore reproduces the same tokens")
}

func TestCheckpointDropsDiagnostics(t *testing.T) {
	l := newLexer("a\n)\n", lexer.Options{})
	l.Next()
	l.Next()
	cp := l.Checkpoint()

	l.All()
	require.Equal(t, 1, l.Diagnostics().Len())

	l.Restore(cp)
	assert.Equal(t, 0, l.Diagnostics().Len())
}

func TestTokenLimit(t *testing.T) {
	l := newLexer("a b c d e", lexer.Options{MaxTokens: 3})
	toks := l.All()

	require.Len(t, toks, 4)
	assert.Equal(t, token.EOF, toks[3].Kind)
	items := l.Diagnostics().Items()
	require.Len(t, items, 1)
	assert.Equal(t, diag.Resource, items[0].Category)
}

func TestTokensNeverSpanLines(t *testing.T) {
	src := "fn main():\n    let s = \"hi\" // c\n    x = 0x1F + 2'000\n"
	l := newLexer(src, lexer.Options{KeepComments: true, SubTokens: true})
	for _, tok := range l.All() {
		line := l.Source().Line(int(tok.Line))
		assert.LessOrEqual(t, int(tok.End()), len(line), "token %s", tok.Kind)
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := newLexer("a # b", lexer.Options{})
	toks := l.All()
	assert.Equal(t, token.Illegal, toks[2].Kind)
	assert.Equal(t, token.Variable, toks[3].Kind)
	require.Equal(t, 1, l.Diagnostics().Len())
}

func TestSharedHashNamesAreReported(t *testing.T) {
	names := namesWithHash(intern.Hash([]byte("seed")), 300)
	var b strings.Builder
	for _, name := range names {
		b.WriteString("x = " + name + "\n")
	}

	l := newLexer(b.String(), lexer.Options{})
	var toks []token.Token
	require.NotPanics(t, func() { toks = l.All() })
	assert.Equal(t, token.EOF, toks[len(toks)-1].Kind)

	items := l.Diagnostics().Items()
	require.NotEmpty(t, items)
	for _, d := range items {
		assert.Equal(t, diag.Resource, d.Category)
		assert.Equal(t, lexer.ErrSharedHash, d.Message)
	}
	assert.Less(t, len(items), len(names), "names up to the distance limit are interned")
}

// namesWithHash returns n distinct names "n<digits>" whose hash is h.
func namesWithHash(h uint16, n int) []string {
	var names []string
	buf := make([]byte, 0, 16)
	for i := 0; len(names) < n; i++ {
		buf = strconv.AppendInt(append(buf[:0], 'n'), int64(i), 10)
		if intern.Hash(buf) == h {
			names = append(names, string(buf))
		}
	}
	return names
}
