package lsp

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/token"
)

// Document is an open text document together with its latest parse.
type Document struct {
	URI     string // Document URI (file:///path/to/file.q)
	Version int    // Version number, incremented on each change
	Unit    *frontend.Unit
}

// DocumentStore manages open documents in memory. Every update re-parses
// the document.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
	opts      parser.Options
}

// NewDocumentStore creates a new document store.
func NewDocumentStore(opts parser.Options) *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
		opts:      opts,
	}
}

// SetOptions changes the parser options used for later updates.
func (s *DocumentStore) SetOptions(opts parser.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

// Options returns the parser options documents are parsed with.
func (s *DocumentStore) Options() parser.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Open adds or replaces a document in the store.
func (s *DocumentStore) Open(uri, content string, version int) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		URI:     uri,
		Version: version,
		Unit:    frontend.ParseString(URIToPath(uri), content, s.opts),
	}
	s.documents[uri] = doc
	return doc
}

// Update replaces the content of an open document. It returns nil when the
// document is not open.
func (s *DocumentStore) Update(uri, content string, version int) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[uri]; !ok {
		return nil
	}
	doc := &Document{
		URI:     uri,
		Version: version,
		Unit:    frontend.ParseString(URIToPath(uri), content, s.opts),
	}
	s.documents[uri] = doc
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, uri)
}

// Get retrieves a document by URI.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documents[uri]
}

// List returns all open document URIs in sorted order.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Content returns the document text.
func (d *Document) Content() string {
	return string(d.Unit.Source.Data)
}

// TokenRange converts a token into an LSP range. Characters are counted in
// UTF-16 code units.
func (d *Document) TokenRange(t token.Token) Range {
	line := d.Unit.Source.Line(int(t.Line))
	start := int(t.Offset)
	end := int(t.End())
	if start > len(line) {
		start = len(line)
	}
	if end > len(line) {
		end = len(line)
	}
	return Range{
		Start: Position{Line: t.Line, Character: uint32(utf16Len(line[:start]))},
		End:   Position{Line: t.Line, Character: uint32(utf16Len(line[:end]))},
	}
}

// NameRange converts a 1-based line and byte column of a name of n bytes
// into an LSP range.
func (d *Document) NameRange(line, column, n int) Range {
	text := d.Unit.Source.Line(line - 1)
	start := column - 1
	end := start + n
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	l := uint32(line - 1)
	return Range{
		Start: Position{Line: l, Character: uint32(utf16Len(text[:start]))},
		End:   Position{Line: l, Character: uint32(utf16Len(text[:end]))},
	}
}

// FullRange covers the whole document.
func (d *Document) FullRange() Range {
	last := d.Unit.Source.LineCount() - 1
	return Range{End: Position{
		Line:      uint32(last),
		Character: uint32(utf16Len(d.Unit.Source.Line(last))),
	}}
}

// TokenAt returns the index of the token covering pos. Indentation and the
// end of input never match.
func (d *Document) TokenAt(pos Position) (int, bool) {
	line := d.Unit.Source.Line(int(pos.Line))
	if line == nil {
		return 0, false
	}
	off := uint32(byteOffset(line, int(pos.Character)))
	for i, t := range d.Unit.Tokens() {
		if t.Line < pos.Line || t.Kind == token.Indent || t.Kind == token.EOF {
			continue
		}
		if t.Line > pos.Line {
			break
		}
		if off >= t.Offset && off < t.End() {
			return i, true
		}
	}
	return 0, false
}

// utf16Len counts the UTF-16 code units of b.
func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// byteOffset converts a UTF-16 column into a byte offset within line.
func byteOffset(line []byte, units int) int {
	off := 0
	for units > 0 && off < len(line) {
		r, size := utf8.DecodeRune(line[off:])
		off += size
		if r >= 0x10000 {
			units -= 2
		} else {
			units--
		}
	}
	return off
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	const prefix = "file://"
	if !strings.HasPrefix(uri, prefix) {
		return uri
	}
	path := uri[len(prefix):]
	if unescaped, err := url.PathUnescape(path); err == nil {
		return unescaped
	}
	return path
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
