package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/quill-lang/quill/internal/state"
	"github.com/quill-lang/quill/pkg/format"
	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/quill-lang/quill/pkg/token"
)

func (s *Server) handleHover(msg *JSONRPCMessage) error {
	var params HoverParams
	if err := s.decodeParams(msg, &params); err != nil {
		return err
	}
	s.sendResponse(msg.ID, s.getHover(params), nil)
	return nil
}

func (s *Server) handleDefinition(msg *JSONRPCMessage) error {
	var params DefinitionParams
	if err := s.decodeParams(msg, &params); err != nil {
		return err
	}
	s.sendResponse(msg.ID, s.getDefinition(params), nil)
	return nil
}

func (s *Server) handleDocumentSymbol(msg *JSONRPCMessage) error {
	var params DocumentSymbolParams
	if err := s.decodeParams(msg, &params); err != nil {
		return err
	}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, []DocumentSymbol{}, nil)
		return nil
	}
	s.sendResponse(msg.ID, documentSymbols(doc, frontend.Symbols(doc.Unit)), nil)
	return nil
}

func (s *Server) handleFormatting(msg *JSONRPCMessage) error {
	var params DocumentFormattingParams
	if err := s.decodeParams(msg, &params); err != nil {
		return err
	}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, []TextEdit{}, nil)
		return nil
	}

	out, err := format.Source(doc.Unit.Source, s.documents.Options().Lexer)
	if err != nil {
		s.logger.Debug("formatting skipped", "uri", doc.URI, "error", err)
		s.sendResponse(msg.ID, []TextEdit{}, nil)
		return nil
	}
	if string(out) == doc.Content() {
		s.sendResponse(msg.ID, []TextEdit{}, nil)
		return nil
	}
	s.sendResponse(msg.ID, []TextEdit{{Range: doc.FullRange(), NewText: string(out)}}, nil)
	return nil
}

// getHover describes the token under the cursor and, for names, where they
// are declared.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}
	i, ok := doc.TokenAt(params.Position)
	if !ok {
		return nil
	}
	lx := doc.Unit.Lexer()
	t := lx.Token(i)

	var b strings.Builder
	fmt.Fprintf(&b, "`%s` %s", lx.Text(i), t.Kind)
	for _, d := range s.declarationsOf(doc, i) {
		kind := d.Kind
		if d.Qualifiers != "" {
			kind = d.Qualifiers + " " + kind
		}
		fmt.Fprintf(&b, "\n\n%s `%s` at %s:%d:%d", kind, d.Name, d.Path, d.Line, d.Column)
	}

	r := doc.TokenRange(t)
	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: b.String()},
		Range:    &r,
	}
}

// getDefinition returns the declarations of the name under the cursor.
func (s *Server) getDefinition(params DefinitionParams) []Location {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}
	i, ok := doc.TokenAt(params.Position)
	if !ok {
		return nil
	}

	var out []Location
	for _, d := range s.declarationsOf(doc, i) {
		loc := Location{URI: PathToURI(d.Path)}
		if d.Path == doc.Unit.Source.Path {
			loc.URI = doc.URI
			loc.Range = doc.NameRange(d.Line, d.Column, len(d.Name))
		} else {
			pos := Position{Line: uint32(d.Line - 1), Character: uint32(d.Column - 1)}
			loc.Range = Range{Start: pos, End: Position{Line: pos.Line, Character: pos.Character + uint32(len(d.Name))}}
		}
		out = append(out, loc)
	}
	return out
}

// declarationsOf finds the declarations of the name at token i: first those
// of the open document, then those recorded in the index for other files.
func (s *Server) declarationsOf(doc *Document, i int) []state.Declaration {
	t := doc.Unit.Lexer().Token(i)
	if !t.Kind.In(token.GroupIdentifier) && !t.Kind.In(token.GroupTypeName) {
		return nil
	}
	name := doc.Unit.Lexer().Name(i)
	if name == "" {
		return nil
	}

	path := doc.Unit.Source.Path
	var out []state.Declaration
	for _, d := range state.Declarations(path, frontend.Flatten(frontend.Symbols(doc.Unit))) {
		if d.Name == name {
			out = append(out, d)
		}
	}

	if s.store == nil {
		return out
	}
	indexed, err := s.store.Lookup(context.Background(), name)
	if err != nil {
		s.logger.Warn("index lookup failed", "name", name, "error", err)
		return out
	}
	for _, d := range indexed {
		if d.Path != path {
			out = append(out, *d)
		}
	}
	return out
}

// documentSymbols converts symbols into the outline of doc.
func documentSymbols(doc *Document, syms []frontend.Symbol) []DocumentSymbol {
	out := make([]DocumentSymbol, 0, len(syms))
	lx := doc.Unit.Lexer()
	for _, sym := range syms {
		full := doc.TokenRange(lx.Token(sym.Range.Start))
		if sym.Range.End > sym.Range.Start {
			full.End = doc.TokenRange(lx.Token(sym.Range.End - 1)).End
		}
		selection := full
		if sym.Line > 0 {
			selection = doc.NameRange(sym.Line, sym.Column, len(sym.Name))
		}
		ds := DocumentSymbol{
			Name:           sym.Name,
			Detail:         strings.TrimSpace(sym.Qualifiers + " " + sym.Kind),
			Kind:           symbolKind(sym),
			Range:          full,
			SelectionRange: selection,
		}
		if len(sym.Children) > 0 {
			ds.Children = documentSymbols(doc, sym.Children)
		}
		out = append(out, ds)
	}
	return out
}

func symbolKind(sym frontend.Symbol) SymbolKind {
	switch sym.Kind {
	case "fn":
		if sym.Container != "" {
			return SymbolKindMethod
		}
		return SymbolKindFunction
	case "struct":
		return SymbolKindStruct
	case "enum":
		return SymbolKindEnum
	case "interface":
		return SymbolKindInterface
	case "class", "union", "variant", "bitfield":
		return SymbolKindClass
	case "field":
		return SymbolKindField
	case "case":
		return SymbolKindEnumMember
	case "init", "deinit":
		return SymbolKindConstructor
	case "operator":
		return SymbolKindOperator
	case "type":
		return SymbolKindTypeParameter
	case "import":
		return SymbolKindModule
	case "const":
		return SymbolKindConstant
	}
	return SymbolKindVariable
}
