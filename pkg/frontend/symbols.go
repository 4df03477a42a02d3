package frontend

import (
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/token"
)

// Symbol summarises one declaration for the index and the language server.
type Symbol struct {
	Name       string
	Kind       string // declaring keyword: fn, struct, field, case, import, let, ...
	Qualifiers string
	Container  string // enclosing aggregate, "" at top level
	Line       int    // 1-based
	Column     int    // 1-based
	Range      ast.Range
	Children   []Symbol
}

// Symbols lists the unit's top-level declarations with aggregate members
// nested as children. Declarations that failed to parse are left out.
func Symbols(u *Unit) []Symbol {
	var out []Symbol
	for _, d := range u.File.Decls() {
		out = append(out, u.symbolsOf(d, "")...)
	}
	return out
}

// Flatten returns syms and all their children in source order.
func Flatten(syms []Symbol) []Symbol {
	var out []Symbol
	for _, s := range syms {
		children := s.Children
		s.Children = nil
		out = append(out, s)
		out = append(out, Flatten(children)...)
	}
	return out
}

func (u *Unit) symbolsOf(d ast.Decl, container string) []Symbol {
	switch d := d.(type) {
	case *ast.FuncDecl:
		return []Symbol{u.symbol(d.Name, "fn", d.Quals, container, d.Range)}
	case *ast.AggregateDecl:
		s := u.symbol(d.Name, d.Kind.Text(), d.Quals, container, d.Range)
		if !d.Name.Valid() {
			s.Name = "<anonymous>"
			s.Line, s.Column = u.position(d.Range.Start)
		}
		for _, m := range d.Members {
			s.Children = append(s.Children, u.symbolsOf(m, s.Name)...)
		}
		return []Symbol{s}
	case *ast.FieldDecl:
		return []Symbol{u.symbol(d.Name, "field", d.Quals, container, d.Range)}
	case *ast.CaseDecl:
		return []Symbol{u.symbol(d.Name, "case", 0, container, d.Range)}
	case *ast.InitDecl:
		return []Symbol{u.special("init", "init", d.Quals, container, d.Range)}
	case *ast.DeinitDecl:
		return []Symbol{u.special("deinit", "deinit", d.Quals, container, d.Range)}
	case *ast.OperatorDecl:
		return []Symbol{u.special("operator", "operator"+operatorText(d.Op), d.Quals, container, d.Range)}
	case *ast.TypeAliasDecl:
		return []Symbol{u.symbol(d.Name, "type", d.Quals, container, d.Range)}
	case *ast.ImportDecl:
		return u.importSymbols(d, container)
	case *ast.VarDecl:
		kind := "var"
		if d.Keyword != 0 {
			kind = d.Keyword.Text()
		}
		return []Symbol{u.symbol(d.Name, kind, d.Quals, container, d.Range)}
	}
	return nil
}

func (u *Unit) importSymbols(d *ast.ImportDecl, container string) []Symbol {
	if len(d.Names) > 0 {
		var out []Symbol
		for _, n := range d.Names {
			name := n.Name
			if n.Alias.Valid() {
				name = n.Alias
			}
			out = append(out, u.symbol(name, "import", 0, container, d.Range))
		}
		return out
	}
	name := d.Alias
	if !name.Valid() && len(d.Path) > 0 {
		name = d.Path[len(d.Path)-1]
	}
	if !name.Valid() {
		return nil
	}
	return []Symbol{u.symbol(name, "import", 0, container, d.Range)}
}

func (u *Unit) symbol(n ast.Name, kind string, q ast.Qualifiers, container string, r ast.Range) Symbol {
	s := Symbol{Kind: kind, Qualifiers: q.String(), Container: container, Range: r}
	if n.Valid() {
		s.Name = u.Strings().String(n.ID)
		s.Line, s.Column = u.position(n.Tok)
	}
	return s
}

func (u *Unit) special(kind, name string, q ast.Qualifiers, container string, r ast.Range) Symbol {
	s := Symbol{Name: name, Kind: kind, Qualifiers: q.String(), Container: container, Range: r}
	s.Line, s.Column = u.position(r.Start)
	return s
}

func (u *Unit) position(tok int) (line, column int) {
	t := u.Lexer().Token(tok)
	return int(t.Line) + 1, int(t.Offset) + 1
}

func operatorText(k token.Kind) string {
	switch k {
	case token.LBracket:
		return "[]"
	case token.LParen:
		return "()"
	}
	return k.Text()
}
