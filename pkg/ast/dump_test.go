package ast_test

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var ranges = regexp.MustCompile(` \[\d+,\d+\)`)

func parseFile(t *testing.T, src string) (*ast.File, *parser.Parser) {
	t.Helper()
	p := parser.New(lexer.New(source.NewString("t.q", src), nil, lexer.Options{}), parser.Options{})
	f := p.ParseFile()
	require.Zero(t, p.Diagnostics().Len(), "unexpected diagnostics: %v", p.Diagnostics().Sorted())
	return f, p
}

func TestDump_Format(t *testing.T) {
	f, p := parseFile(t, "let x = 1 + 2 * y\nfn f(a: i32) -> i32 {\n    return a\n}\n")

	got := ranges.ReplaceAllString(ast.Dump(f, p.Strings()).Format(), "")
	want := `File "t.q"
  VarDecl "let x"
    BinaryExpr "+"
      Literal "1"
      BinaryExpr "*"
        Literal "2"
        Ident "y"
  FuncDecl "f"
`
	assert.Equal(t, want, got[:len(want)])
	assert.Contains(t, got, `Param "a"`)
	assert.Contains(t, got, `ReturnStmt`)
}

func TestDump_Ranges(t *testing.T) {
	f, p := parseFile(t, "let x = 1")
	d := ast.Dump(f, p.Strings())
	require.Len(t, d.Children, 1)

	decl := d.Children[0]
	assert.Equal(t, "VarDecl", decl.Kind)
	// Token 0 is the line's indentation record.
	assert.Equal(t, [2]int{1, 5}, decl.Range)
}

func TestDump_Encoding(t *testing.T) {
	f, p := parseFile(t, "let x = y")
	d := ast.Dump(f, p.Strings())

	data, err := json.Marshal(d.Children[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "VarDecl",
		"text": "let x",
		"range": [1, 5],
		"children": [{"kind": "Ident", "text": "y", "range": [4, 5]}]
	}`, string(data))

	out, err := yaml.Marshal(d.Children[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), "range: [1, 5]")
}

func TestDump_NilNames(t *testing.T) {
	f, _ := parseFile(t, "let x = y")
	d := ast.Dump(f, nil)
	require.Len(t, d.Children, 1)
	assert.Equal(t, "let ", d.Children[0].Text)
}

func TestSexpr(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"2 ** 3 ** 4", "(** 2 (** 3 4))"},
		{"-a.b", "(- (.b a))"},
		{"f(x)[0]", "(index (call f x) 0)"},
		{"(a, 1)", "(tuple a 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p := parser.New(lexer.New(source.NewString("t.q", tt.src), nil, lexer.Options{}), parser.Options{})
			x := p.ParseExpr()
			require.Zero(t, p.Diagnostics().Len())
			assert.Equal(t, tt.want, ast.Sexpr(x, p.Strings()))
		})
	}
}
