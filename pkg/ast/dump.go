package ast

import (
	"fmt"
	"strings"

	"github.com/quill-lang/quill/pkg/token"
)

// Names resolves interned ids to text.
type Names interface {
	String(id uint16) string
}

// DumpNode is a generic rendering of a node for text, JSON and YAML output.
type DumpNode struct {
	Kind     string      `json:"kind" yaml:"kind"`
	Text     string      `json:"text,omitempty" yaml:"text,omitempty"`
	Range    [2]int      `json:"range" yaml:"range,flow"`
	Children []*DumpNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type dumper struct {
	names Names
}

// Dump converts the tree rooted at n into DumpNodes.
func Dump(n Node, names Names) *DumpNode {
	d := dumper{names: names}
	return d.node(n)
}

func (d dumper) name(n Name) string {
	if !n.Valid() || d.names == nil {
		return ""
	}
	return d.names.String(n.ID)
}

func (d dumper) path(p []Name, last Name) string {
	parts := make([]string, 0, len(p)+1)
	for _, n := range p {
		parts = append(parts, d.name(n))
	}
	parts = append(parts, d.name(last))
	return strings.Join(parts, "::")
}

func (d dumper) leaf(kind, text string, r Range) *DumpNode {
	return &DumpNode{Kind: kind, Text: text, Range: [2]int{r.Start, r.End}}
}

func (d dumper) add(parent *DumpNode, children ...Node) {
	for _, c := range children {
		if isNil(c) {
			continue
		}
		parent.Children = append(parent.Children, d.node(c))
	}
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	b, ok := n.(*Block)
	return ok && b == nil
}

func (d dumper) header(parent *DumpNode, h Header) {
	for _, a := range h.Annotations {
		an := d.leaf("Annotation", d.name(a.Name), a.Range)
		for _, arg := range a.Args {
			an.Children = append(an.Children, d.arg(arg))
		}
		parent.Children = append(parent.Children, an)
	}
	if h.Quals != 0 {
		parent.Children = append(parent.Children, &DumpNode{Kind: "Qualifiers", Text: h.Quals.String()})
	}
}

func (d dumper) arg(a *Arg) *DumpNode {
	n := d.leaf("Arg", d.name(a.Name), a.Range)
	d.add(n, a.Value)
	return n
}

func (d dumper) generics(parent *DumpNode, gs []*GenericParam) {
	for _, g := range gs {
		n := d.leaf("GenericParam", d.name(g.Name), g.Range)
		d.add(n, g.Bound, g.Default)
		parent.Children = append(parent.Children, n)
	}
}

func (d dumper) params(parent *DumpNode, ps []*Param) {
	for _, p := range ps {
		text := d.name(p.Name)
		if p.Quals != 0 {
			text = p.Quals.String() + " " + text
		}
		n := d.leaf("Param", text, p.Range)
		d.add(n, p.Type, p.Default)
		parent.Children = append(parent.Children, n)
	}
}

func (d dumper) node(n Node) *DumpNode {
	switch v := n.(type) {
	case *File:
		out := d.leaf("File", v.Path, v.Range)
		for _, s := range v.Items {
			d.add(out, s)
		}
		return out

	// declarations
	case *FuncDecl:
		out := d.leaf("FuncDecl", d.name(v.Name), v.Range)
		d.header(out, v.Header)
		d.generics(out, v.Generics)
		d.params(out, v.Params)
		d.add(out, v.Result, v.Body)
		return out
	case *AggregateDecl:
		out := d.leaf("AggregateDecl", strings.TrimSpace(v.Kind.Text()+" "+d.name(v.Name)), v.Range)
		d.header(out, v.Header)
		d.generics(out, v.Generics)
		d.add(out, v.Base)
		for _, m := range v.Members {
			d.add(out, m)
		}
		return out
	case *FieldDecl:
		out := d.leaf("FieldDecl", d.name(v.Name), v.Range)
		d.header(out, v.Header)
		d.add(out, v.Type, v.Default, v.Width)
		return out
	case *CaseDecl:
		out := d.leaf("CaseDecl", d.name(v.Name), v.Range)
		d.add(out, v.Value)
		for _, f := range v.Fields {
			d.add(out, f)
		}
		return out
	case *InitDecl:
		out := d.leaf("InitDecl", "", v.Range)
		d.header(out, v.Header)
		d.params(out, v.Params)
		d.add(out, v.Body)
		return out
	case *DeinitDecl:
		out := d.leaf("DeinitDecl", "", v.Range)
		d.header(out, v.Header)
		d.add(out, v.Body)
		return out
	case *OperatorDecl:
		out := d.leaf("OperatorDecl", v.Op.Text(), v.Range)
		d.header(out, v.Header)
		d.params(out, v.Params)
		d.add(out, v.Result, v.Body)
		return out
	case *TypeAliasDecl:
		out := d.leaf("TypeAliasDecl", d.name(v.Name), v.Range)
		d.header(out, v.Header)
		d.generics(out, v.Generics)
		d.add(out, v.Target)
		return out
	case *ImportDecl:
		text := d.path(v.Path[:max(len(v.Path)-1, 0)], lastName(v.Path))
		if v.Alias.Valid() {
			text += " as " + d.name(v.Alias)
		}
		out := d.leaf("ImportDecl", text, v.Range)
		for _, in := range v.Names {
			t := d.name(in.Name)
			if in.Alias.Valid() {
				t += " as " + d.name(in.Alias)
			}
			out.Children = append(out.Children, &DumpNode{Kind: "ImportName", Text: t, Range: [2]int{in.Name.Tok, in.Name.Tok + 1}})
		}
		return out
	case *VarDecl:
		text := d.name(v.Name)
		if v.Keyword != 0 {
			text = v.Keyword.Text() + " " + text
		}
		out := d.leaf("VarDecl", text, v.Range)
		d.header(out, v.Header)
		d.add(out, v.Type, v.Value)
		return out
	case *BadDecl:
		return d.leaf("BadDecl", "", v.Range)

	// types
	case *TypeName:
		text := d.path(v.Path, v.Name)
		if v.Builtin != 0 {
			text = v.Builtin.Text()
		}
		out := d.leaf("TypeName", text, v.Range)
		for _, a := range v.Args {
			d.add(out, a)
		}
		return out
	case *PointerType:
		out := d.leaf("PointerType", "", v.Range)
		d.add(out, v.Elem)
		return out
	case *ReferenceType:
		out := d.leaf("ReferenceType", "", v.Range)
		d.add(out, v.Elem)
		return out
	case *FallibleType:
		out := d.leaf("FallibleType", "", v.Range)
		d.add(out, v.Elem)
		return out
	case *NoReturnType:
		return d.leaf("NoReturnType", "", v.Range)
	case *ArrayType:
		out := d.leaf("ArrayType", "", v.Range)
		d.add(out, v.Elem, v.Len)
		return out
	case *TupleType:
		out := d.leaf("TupleType", "", v.Range)
		for _, e := range v.Elems {
			d.add(out, e)
		}
		return out
	case *FuncType:
		out := d.leaf("FuncType", "", v.Range)
		for _, p := range v.Params {
			d.add(out, p)
		}
		d.add(out, v.Result)
		return out
	case *BadType:
		return d.leaf("BadType", "", v.Range)

	// statements
	case *Block:
		out := d.leaf("Block", "", v.Range)
		for _, s := range v.Stmts {
			d.add(out, s)
		}
		return out
	case *DeclStmt:
		return d.node(v.Decl)
	case *ExprStmt:
		out := d.leaf("ExprStmt", "", v.Range)
		d.add(out, v.X)
		return out
	case *IfStmt:
		out := d.leaf("IfStmt", "", v.Range)
		d.add(out, v.Cond, v.Then, v.Else)
		return out
	case *WhileStmt:
		out := d.leaf("WhileStmt", "", v.Range)
		d.add(out, v.Cond, v.Body)
		return out
	case *ForStmt:
		out := d.leaf("ForStmt", d.name(v.Var), v.Range)
		d.add(out, v.Iter, v.Body)
		return out
	case *LoopStmt:
		out := d.leaf("LoopStmt", "", v.Range)
		d.add(out, v.Body)
		return out
	case *ReturnStmt:
		out := d.leaf("ReturnStmt", "", v.Range)
		d.add(out, v.Value)
		return out
	case *YieldStmt:
		out := d.leaf("YieldStmt", "", v.Range)
		d.add(out, v.Value)
		return out
	case *BreakStmt:
		return d.leaf("BreakStmt", "", v.Range)
	case *ContinueStmt:
		return d.leaf("ContinueStmt", "", v.Range)
	case *DeferStmt:
		out := d.leaf("DeferStmt", "", v.Range)
		d.add(out, v.Body)
		return out
	case *MatchStmt:
		out := d.leaf("MatchStmt", "", v.Range)
		d.add(out, v.Subject)
		for _, a := range v.Arms {
			arm := d.leaf("MatchArm", "", a.Range)
			d.add(arm, a.Pattern, a.Body)
			out.Children = append(out.Children, arm)
		}
		return out
	case *ShellStmt:
		words := make([]string, len(v.Words))
		for i, w := range v.Words {
			words[i] = d.name(w)
		}
		return d.leaf("ShellStmt", strings.Join(words, " "), v.Range)
	case *BadStmt:
		return d.leaf("BadStmt", "", v.Range)

	// expressions
	case *Ident:
		return d.leaf("Ident", d.name(v.Name), v.Range)
	case *Literal:
		text := v.Kind.Text()
		if v.Value != NoName && d.names != nil {
			text = d.names.String(v.Value)
		}
		return d.leaf("Literal", text, v.Range)
	case *UnaryExpr:
		out := d.leaf("UnaryExpr", v.Op.Text(), v.Range)
		d.add(out, v.X)
		return out
	case *PostfixExpr:
		out := d.leaf("PostfixExpr", v.Op.Text(), v.Range)
		d.add(out, v.X)
		return out
	case *BinaryExpr:
		out := d.leaf("BinaryExpr", v.Op.Text(), v.Range)
		d.add(out, v.X, v.Y)
		return out
	case *TernaryExpr:
		out := d.leaf("TernaryExpr", "", v.Range)
		d.add(out, v.Cond, v.Then, v.Else)
		return out
	case *CastExpr:
		out := d.leaf("CastExpr", v.Op.Text(), v.Range)
		d.add(out, v.X, v.Type)
		return out
	case *CallExpr:
		out := d.leaf("CallExpr", "", v.Range)
		d.add(out, v.Fun)
		for _, a := range v.Args {
			out.Children = append(out.Children, d.arg(a))
		}
		return out
	case *GenericExpr:
		out := d.leaf("GenericExpr", "", v.Range)
		d.add(out, v.X)
		for _, a := range v.Args {
			d.add(out, a)
		}
		return out
	case *IndexExpr:
		out := d.leaf("IndexExpr", "", v.Range)
		d.add(out, v.X, v.Index)
		return out
	case *SliceExpr:
		out := d.leaf("SliceExpr", "", v.Range)
		d.add(out, v.X, v.Lo, v.Hi)
		return out
	case *MemberExpr:
		out := d.leaf("MemberExpr", d.name(v.Name), v.Range)
		d.add(out, v.X)
		return out
	case *ScopeExpr:
		out := d.leaf("ScopeExpr", d.name(v.Name), v.Range)
		d.add(out, v.X)
		return out
	case *ParenExpr:
		out := d.leaf("ParenExpr", "", v.Range)
		d.add(out, v.X)
		return out
	case *TupleExpr:
		out := d.leaf("TupleExpr", "", v.Range)
		for _, e := range v.Elems {
			d.add(out, e)
		}
		return out
	case *ArrayExpr:
		out := d.leaf("ArrayExpr", "", v.Range)
		for _, e := range v.Elems {
			d.add(out, e)
		}
		return out
	case *LambdaExpr:
		out := d.leaf("LambdaExpr", "", v.Range)
		d.params(out, v.Params)
		d.add(out, v.Result, v.Body)
		return out
	case *NewExpr:
		out := d.leaf("NewExpr", "", v.Range)
		d.add(out, v.Type)
		for _, a := range v.Args {
			out.Children = append(out.Children, d.arg(a))
		}
		return out
	case *BadExpr:
		return d.leaf("BadExpr", "", v.Range)
	}
	panic(fmt.Sprintf("ast: unexpected node %T", n))
}

func lastName(p []Name) Name {
	if len(p) == 0 {
		return Name{ID: NoName}
	}
	return p[len(p)-1]
}

// Format renders d as an indented tree, one node per line.
func (d *DumpNode) Format() string {
	var b strings.Builder
	d.format(&b, 0)
	return b.String()
}

func (d *DumpNode) format(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(d.Kind)
	if d.Text != "" {
		fmt.Fprintf(b, " %q", d.Text)
	}
	fmt.Fprintf(b, " [%d,%d)\n", d.Range[0], d.Range[1])
	for _, c := range d.Children {
		c.format(b, depth+1)
	}
}

// Sexpr renders an expression as a parenthesised prefix form, e.g.
// (+ 1 (* 2 3)). It is meant for tests and debugging output.
func Sexpr(e Expr, names Names) string {
	var b strings.Builder
	sexpr(&b, e, names)
	return b.String()
}

func sexpr(b *strings.Builder, e Expr, names Names) {
	name := func(n Name) string {
		if !n.Valid() || names == nil {
			return "_"
		}
		return names.String(n.ID)
	}
	list := func(head string, xs ...Expr) {
		b.WriteString("(" + head)
		for _, x := range xs {
			b.WriteByte(' ')
			sexpr(b, x, names)
		}
		b.WriteByte(')')
	}

	switch v := e.(type) {
	case nil:
		b.WriteString("nil")
	case *Ident:
		b.WriteString(name(v.Name))
	case *Literal:
		if v.Value != NoName && names != nil {
			b.WriteString(names.String(v.Value))
		} else {
			b.WriteString(v.Kind.Text())
		}
	case *UnaryExpr:
		list(v.Op.Text(), v.X)
	case *PostfixExpr:
		list("post"+v.Op.Text(), v.X)
	case *BinaryExpr:
		list(v.Op.Text(), v.X, v.Y)
	case *TernaryExpr:
		list("?:", v.Cond, v.Then, v.Else)
	case *CastExpr:
		list(v.Op.Text(), v.X)
	case *CallExpr:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = a.Value
		}
		list("call", append([]Expr{v.Fun}, args...)...)
	case *GenericExpr:
		list("generic", v.X)
	case *IndexExpr:
		list("index", v.X, v.Index)
	case *SliceExpr:
		list("slice", v.X, v.Lo, v.Hi)
	case *MemberExpr:
		list("."+name(v.Name), v.X)
	case *ScopeExpr:
		list("::"+name(v.Name), v.X)
	case *ParenExpr:
		sexpr(b, v.X, names)
	case *TupleExpr:
		list("tuple", v.Elems...)
	case *ArrayExpr:
		list("array", v.Elems...)
	case *LambdaExpr:
		b.WriteString("(lambda")
		for _, p := range v.Params {
			b.WriteString(" " + name(p.Name))
		}
		b.WriteByte(')')
	case *NewExpr:
		b.WriteString("(new)")
	case *BadExpr:
		b.WriteString("bad")
	default:
		b.WriteString(token.Illegal.String())
	}
}
