package parser_test

import (
	"strings"
	"testing"

	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/diag"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*ast.File, *parser.Parser) {
	t.Helper()
	file, p := parser.ParseString("test.q", src, parser.Options{})
	require.NotNil(t, file)
	return file, p
}

// parseClean parses src and fails the test on any diagnostic.
func parseClean(t *testing.T, src string) (*ast.File, *parser.Parser) {
	t.Helper()
	file, p := parse(t, src)
	for _, d := range p.Diagnostics().Items() {
		t.Errorf("unexpected diagnostic: %s", d.Error())
	}
	return file, p
}

func sexpr(t *testing.T, src string) string {
	t.Helper()
	lx := lexer.New(source.NewString("test.q", src), nil, lexer.Options{})
	p := parser.New(lx, parser.Options{})
	x := p.ParseExpr()
	require.Zero(t, p.Diagnostics().Len(), "diagnostics: %v", p.Diagnostics().Items())
	return ast.Sexpr(x, p.Strings())
}

func decl[T ast.Decl](t *testing.T, file *ast.File, i int) T {
	t.Helper()
	require.Greater(t, len(file.Items), i)
	ds, ok := file.Items[i].(*ast.DeclStmt)
	require.True(t, ok, "item %d is %T", i, file.Items[i])
	d, ok := ds.Decl.(T)
	require.True(t, ok, "item %d is %T", i, ds.Decl)
	return d
}

func nameOf(p *parser.Parser, n ast.Name) string {
	if !n.Valid() {
		return ""
	}
	return p.Strings().String(n.ID)
}

func messages(p *parser.Parser) []string {
	var out []string
	for _, d := range p.Diagnostics().Items() {
		out = append(out, d.Message)
	}
	return out
}

// ---------- Expressions ----------

func TestPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"a - b - c", "(- (- a b) c)"},
		{"a ** b ** c", "(** a (** b c))"},
		{"a = b = c", "(= a (= b c))"},
		{"a || b && c", "(|| a (&& b c))"},
		{"a == b < c", "(== a (< b c))"},
		{"-x * y", "(* (- x) y)"},
		{"!a.b", "(! (.b a))"},
		{"f(x, y)[0]", "(index (call f x y) 0)"},
		{"c ? a : b", "(?: c a b)"},
		{"f()?", "(post? (call f))"},
		{"x as i32 * 2", "(* (as x) 2)"},
		{"xs[1:n]", "(slice xs 1 n)"},
		{"(a, b)", "(tuple a b)"},
		{"[1, 2]", "(array 1 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, sexpr(t, tt.src))
		})
	}
}

func TestNamedArguments(t *testing.T) {
	lx := lexer.New(source.NewString("test.q", "draw(x, color = RED)"), nil, lexer.Options{})
	p := parser.New(lx, parser.Options{})
	x := p.ParseExpr()
	require.Zero(t, p.Diagnostics().Len())

	call, ok := x.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	assert.False(t, call.Args[0].Name.Valid())
	assert.Equal(t, "color", nameOf(p, call.Args[1].Name))
}

func TestLambdaVersusTuple(t *testing.T) {
	assert.Equal(t, "(lambda x y)", sexpr(t, "(x, y) => x + y"))
	assert.Equal(t, "(lambda a)", sexpr(t, "(a: i32) -> i32 => a * 2"))
	assert.Equal(t, "(tuple x y)", sexpr(t, "(x, y)"))
	assert.Equal(t, "(call (lambda) 1)", sexpr(t, "(() => 1)(1)"))
}

func TestLambdaBlockBody(t *testing.T) {
	file, p := parseClean(t, "let f = (x) => {\n    return x\n}")
	v := decl[*ast.VarDecl](t, file, 0)
	lam, ok := v.Value.(*ast.LambdaExpr)
	require.True(t, ok)

	body, ok := lam.Body.(*ast.Block)
	require.True(t, ok)
	require.Len(t, body.Stmts, 1)
	assert.IsType(t, &ast.ReturnStmt{}, body.Stmts[0])

	sc := file.Scopes.Get(lam.Scope)
	require.Len(t, sc.Names, 1)
	assert.Equal(t, "x", nameOf(p, sc.Names[0]))
}

func TestDepthLimit(t *testing.T) {
	src := strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)
	lx := lexer.New(source.NewString("test.q", src), nil, lexer.Options{})
	p := parser.New(lx, parser.Options{MaxDepth: 8})
	p.ParseExpr()

	var resource int
	for _, d := range p.Diagnostics().Items() {
		if d.Category == diag.Resource {
			resource++
		}
	}
	assert.Equal(t, 1, resource)
}

// ---------- Backtracking ----------

func TestTypedDeclVersusCall(t *testing.T) {
	file, p := parseClean(t, "Foo(1, 2)\nFoo x = 1\nVec<i32> v = make()\nPoint.origin()")
	require.Len(t, file.Items, 4)

	es, ok := file.Items[0].(*ast.ExprStmt)
	require.True(t, ok)
	assert.Equal(t, "(call Foo 1 2)", ast.Sexpr(es.X, p.Strings()))

	x := decl[*ast.VarDecl](t, file, 1)
	assert.Zero(t, x.Keyword)
	assert.Equal(t, "x", nameOf(p, x.Name))
	assert.IsType(t, &ast.TypeName{}, x.Type)

	v := decl[*ast.VarDecl](t, file, 2)
	tn, ok := v.Type.(*ast.TypeName)
	require.True(t, ok)
	assert.Len(t, tn.Args, 1)
	assert.IsType(t, &ast.CallExpr{}, v.Value)

	assert.IsType(t, &ast.ExprStmt{}, file.Items[3])
}

func TestFailedAttemptLeavesNoScopes(t *testing.T) {
	file, p := parseClean(t, "(a, 1)")
	es, ok := file.Items[0].(*ast.ExprStmt)
	require.True(t, ok)
	assert.Equal(t, "(tuple a 1)", ast.Sexpr(es.X, p.Strings()))
	// the lambda attempt opened a scope that was dropped with it
	assert.Equal(t, 1, file.Scopes.Len())
}

// ---------- Declarations ----------

func TestFunctionDecl(t *testing.T) {
	file, p := parseClean(t, "pub fn max<T: Ord>(a: T, b: T = a) -> T {\n    let m = a\n    return m\n}")
	fn := decl[*ast.FuncDecl](t, file, 0)

	assert.Equal(t, "max", nameOf(p, fn.Name))
	assert.True(t, fn.Quals.Has(ast.QualPub))
	require.Len(t, fn.Generics, 1)
	assert.NotNil(t, fn.Generics[0].Bound)
	require.Len(t, fn.Params, 2)
	assert.Nil(t, fn.Params[0].Default)
	assert.NotNil(t, fn.Params[1].Default)
	assert.NotNil(t, fn.Result)
	require.NotNil(t, fn.Body)
	assert.Len(t, fn.Body.Stmts, 2)

	var names []string
	for _, n := range file.Scopes.Get(fn.Scope).Names {
		names = append(names, nameOf(p, n))
	}
	assert.Equal(t, []string{"T", "a", "b", "m"}, names)

	_, found := file.Scopes.Lookup(file.Scope, fn.Name.ID)
	assert.True(t, found)
}

func TestBodilessFunction(t *testing.T) {
	file, _ := parseClean(t, "extern fn puts(s: str) -> i32")
	fn := decl[*ast.FuncDecl](t, file, 0)
	assert.Nil(t, fn.Body)
	assert.True(t, fn.Quals.Has(ast.QualExtern))
}

func TestStructDecl(t *testing.T) {
	src := "pub struct Point<T>: Base {\n" +
		"    x: T = 0\n" +
		"    y: T\n" +
		"    fn len(self) -> f64\n" +
		"}"
	file, p := parseClean(t, src)
	agg := decl[*ast.AggregateDecl](t, file, 0)

	assert.Equal(t, "Point", nameOf(p, agg.Name))
	assert.True(t, agg.Quals.Has(ast.QualPub))
	assert.Len(t, agg.Generics, 1)
	assert.NotNil(t, agg.Base)
	require.Len(t, agg.Members, 3)

	x, ok := agg.Members[0].(*ast.FieldDecl)
	require.True(t, ok)
	assert.NotNil(t, x.Default)
	y, ok := agg.Members[1].(*ast.FieldDecl)
	require.True(t, ok)
	assert.Nil(t, y.Default)
	fn, ok := agg.Members[2].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Nil(t, fn.Body)
}

func TestEnumCasesIndented(t *testing.T) {
	file, p := parseClean(t, "enum Color:\n    Red, Green = 2\n    Blue\n")
	agg := decl[*ast.AggregateDecl](t, file, 0)
	require.Len(t, agg.Members, 3)

	var names []string
	for _, m := range agg.Members {
		c, ok := m.(*ast.CaseDecl)
		require.True(t, ok)
		names = append(names, nameOf(p, c.Name))
	}
	assert.Equal(t, []string{"Red", "Green", "Blue"}, names)
	assert.NotNil(t, agg.Members[1].(*ast.CaseDecl).Value)
}

func TestVariantCases(t *testing.T) {
	file, _ := parseClean(t, "variant Shape { Circle(f64), Rect(f64, f64) }")
	agg := decl[*ast.AggregateDecl](t, file, 0)
	require.Len(t, agg.Members, 2)
	assert.Len(t, agg.Members[0].(*ast.CaseDecl).Fields, 1)
	assert.Len(t, agg.Members[1].(*ast.CaseDecl).Fields, 2)
}

func TestBitfieldWidth(t *testing.T) {
	file, _ := parseClean(t, "bitfield Flags: u8 {\n    ready: bool : 1\n}")
	agg := decl[*ast.AggregateDecl](t, file, 0)
	require.Len(t, agg.Members, 1)
	f, ok := agg.Members[0].(*ast.FieldDecl)
	require.True(t, ok)
	assert.NotNil(t, f.Width)
}

func TestSpecialMembers(t *testing.T) {
	src := "class Buffer {\n" +
		"    init(n: usize) {}\n" +
		"    deinit {}\n" +
		"    operator +(a: Buffer, b: Buffer) -> Buffer {}\n" +
		"    operator [](i: usize) -> u8 {}\n" +
		"}"
	file, _ := parseClean(t, src)
	agg := decl[*ast.AggregateDecl](t, file, 0)
	require.Len(t, agg.Members, 4)
	assert.IsType(t, &ast.InitDecl{}, agg.Members[0])
	assert.IsType(t, &ast.DeinitDecl{}, agg.Members[1])
	plus, ok := agg.Members[2].(*ast.OperatorDecl)
	require.True(t, ok)
	assert.Equal(t, "+", plus.Op.Text())
	index, ok := agg.Members[3].(*ast.OperatorDecl)
	require.True(t, ok)
	assert.Equal(t, "[", index.Op.Text())
}

func TestImports(t *testing.T) {
	file, p := parseClean(t, "import std::io as sio\nfrom std::fs import read, File as F")

	imp := decl[*ast.ImportDecl](t, file, 0)
	assert.Len(t, imp.Path, 2)
	assert.Equal(t, "sio", nameOf(p, imp.Alias))

	from := decl[*ast.ImportDecl](t, file, 1)
	require.Len(t, from.Names, 2)
	assert.Equal(t, "read", nameOf(p, from.Names[0].Name))
	assert.Equal(t, "F", nameOf(p, from.Names[1].Alias))

	var names []string
	for _, n := range file.Scopes.Get(file.Scope).Names {
		names = append(names, nameOf(p, n))
	}
	assert.Equal(t, []string{"sio", "read", "F"}, names)
}

func TestVarDecls(t *testing.T) {
	file, p := parseClean(t, "let a: i32 = 1\nvar b = 2\nconst MAX = 3\ntype Pair<T> = (T, T)")

	a := decl[*ast.VarDecl](t, file, 0)
	assert.Equal(t, "let", a.Keyword.Text())
	assert.NotNil(t, a.Type)

	b := decl[*ast.VarDecl](t, file, 1)
	assert.Equal(t, "var", b.Keyword.Text())

	c := decl[*ast.VarDecl](t, file, 2)
	assert.Equal(t, "const", c.Keyword.Text())
	assert.False(t, c.Quals.Has(ast.QualConst))
	assert.Equal(t, "MAX", nameOf(p, c.Name))

	alias := decl[*ast.TypeAliasDecl](t, file, 3)
	assert.Len(t, alias.Generics, 1)
	assert.IsType(t, &ast.TupleType{}, alias.Target)
}

func TestAnnotations(t *testing.T) {
	file, p := parseClean(t, "@inline\n@deprecated(\"old\")\nfn f() {}")
	fn := decl[*ast.FuncDecl](t, file, 0)
	require.Len(t, fn.Annotations, 2)
	assert.Equal(t, "inline", nameOf(p, fn.Annotations[0].Name))
	assert.Len(t, fn.Annotations[1].Args, 1)
}

func TestQualifierErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"duplicate", "pub pub fn f() {}", `duplicate qualifier "pub"`},
		{"conflict", "pub priv fn f() {}", `qualifiers "pub" and "priv" conflict`},
		{"local", "fn f() {\n    static let x = 1\n}", `qualifier "static" is not allowed on a local declaration`},
		{"target", "inline struct S {}", `qualifier "inline" cannot apply to a type declaration`},
		{"extern body", "extern fn f() {}", "extern declaration cannot have a body"},
		{"missing default", "fn f(a: i32 = 1, b: i32) {}", `parameter "b" needs a default after a defaulted one`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, p := parse(t, tt.src)
			assert.Equal(t, []string{tt.want}, messages(p))
		})
	}
}

// ---------- Statements ----------

func TestIndentedBlocks(t *testing.T) {
	src := "fn main():\n" +
		"    let x = 1\n" +
		"    if x > 0:\n" +
		"        return x\n" +
		"    else:\n" +
		"        return 0\n"
	file, _ := parseClean(t, src)
	fn := decl[*ast.FuncDecl](t, file, 0)
	require.NotNil(t, fn.Body)
	assert.True(t, fn.Body.Indented)
	require.Len(t, fn.Body.Stmts, 2)

	ifs, ok := fn.Body.Stmts[1].(*ast.IfStmt)
	require.True(t, ok)
	assert.Len(t, ifs.Then.Stmts, 1)
	els, ok := ifs.Else.(*ast.Block)
	require.True(t, ok)
	assert.Len(t, els.Stmts, 1)
}

func TestBraceBlockWithSemicolons(t *testing.T) {
	file, _ := parseClean(t, "fn f() { let a = 1; return a }")
	fn := decl[*ast.FuncDecl](t, file, 0)
	require.NotNil(t, fn.Body)
	assert.False(t, fn.Body.Indented)
	assert.Len(t, fn.Body.Stmts, 2)
}

func TestSameLineBlock(t *testing.T) {
	file, _ := parseClean(t, "if ready: go()")
	ifs, ok := file.Items[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifs.Then.Stmts, 1)
	assert.False(t, ifs.Then.Indented)
}

func TestComparisonAgainstCapitalBeforeBlock(t *testing.T) {
	file, p := parseClean(t, "if i<N {\n    go()\n}")
	ifs, ok := file.Items[0].(*ast.IfStmt)
	require.True(t, ok, "item is %T", file.Items[0])
	assert.Equal(t, "(< i N)", ast.Sexpr(ifs.Cond, p.Strings()))
	assert.Len(t, ifs.Then.Stmts, 1)
}

func TestLoops(t *testing.T) {
	src := "for i in items:\n    print(i)\nwhile (a) {\n    break\n}\nloop { continue }"
	file, p := parseClean(t, src)
	require.Len(t, file.Items, 3)

	f, ok := file.Items[0].(*ast.ForStmt)
	require.True(t, ok)
	assert.Equal(t, "i", nameOf(p, f.Var))
	names := file.Scopes.Get(f.Scope).Names
	require.Len(t, names, 1)
	assert.Equal(t, "i", nameOf(p, names[0]))

	w, ok := file.Items[1].(*ast.WhileStmt)
	require.True(t, ok)
	assert.IsType(t, &ast.ParenExpr{}, w.Cond)

	assert.IsType(t, &ast.LoopStmt{}, file.Items[2])
}

func TestMatch(t *testing.T) {
	file, _ := parseClean(t, "match x {\n    1 => a, 2 => b\n    _ => { c }\n}")
	m, ok := file.Items[0].(*ast.MatchStmt)
	require.True(t, ok)
	require.Len(t, m.Arms, 3)
	assert.IsType(t, &ast.ExprStmt{}, m.Arms[0].Body)
	assert.IsType(t, &ast.Block{}, m.Arms[2].Body)
}

func TestShellAndDefer(t *testing.T) {
	file, _ := parseClean(t, "$ ls -la\ndefer close(f)")
	sh, ok := file.Items[0].(*ast.ShellStmt)
	require.True(t, ok)
	assert.Len(t, sh.Words, 2)

	d, ok := file.Items[1].(*ast.DeferStmt)
	require.True(t, ok)
	assert.IsType(t, &ast.ExprStmt{}, d.Body)
}

// ---------- Recovery ----------

func TestRecoveryContinuesAtNextLine(t *testing.T) {
	file, p := parse(t, "let a = 1 +\nlet b = 2\nlet d = 1 2\nlet e = 3")

	assert.Equal(t, []string{
		"expected expression, found end of line",
		"expected end of statement, found '2'",
	}, messages(p))

	require.Len(t, file.Items, 4)
	var names []string
	for i := range file.Items {
		names = append(names, nameOf(p, decl[*ast.VarDecl](t, file, i).Name))
	}
	assert.Equal(t, []string{"a", "b", "d", "e"}, names)

	a := decl[*ast.VarDecl](t, file, 0)
	bin, ok := a.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.IsType(t, &ast.BadExpr{}, bin.Y)
}

func TestRecoveryInsideBraces(t *testing.T) {
	file, p := parse(t, "fn f() {\n    let = 1\n    return 2\n}\nlet z = 0")
	assert.Equal(t, []string{"expected name, found '='"}, messages(p))

	require.Len(t, file.Items, 2)
	fn := decl[*ast.FuncDecl](t, file, 0)
	require.NotNil(t, fn.Body)
	require.Len(t, fn.Body.Stmts, 2)
	assert.IsType(t, &ast.ReturnStmt{}, fn.Body.Stmts[1])
}
