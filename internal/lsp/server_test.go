package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/quill-lang/quill/internal/state"
	"github.com/quill-lang/quill/internal/testutil"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// session frames client messages and decodes what the server wrote back.
type session struct {
	t      *testing.T
	input  bytes.Buffer
	nextID int
}

func newSession(t *testing.T) *session {
	return &session{t: t}
}

func (s *session) send(method string, id *int, params any) {
	s.t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "method": method}
	if id != nil {
		msg["id"] = *id
	}
	if params != nil {
		msg["params"] = params
	}
	body, err := json.Marshal(msg)
	require.NoError(s.t, err)
	fmt.Fprintf(&s.input, "Content-Length: %d\r\n\r\n%s", len(body), body)
}

func (s *session) request(method string, params any) int {
	s.nextID++
	id := s.nextID
	s.send(method, &id, params)
	return id
}

func (s *session) notify(method string, params any) {
	s.send(method, nil, params)
}

func (s *session) raw(body string) {
	fmt.Fprintf(&s.input, "Content-Length: %d\r\n\r\n%s", len(body), body)
}

func (s *session) start(root string) {
	s.request("initialize", map[string]any{"processId": 1, "rootUri": root})
	s.notify("initialized", map[string]any{})
}

func (s *session) stop() {
	s.request("shutdown", nil)
	s.notify("exit", nil)
}

// run feeds the queued messages to a server and returns its replies.
func (s *session) run(store state.Store) (*transcript, error) {
	s.t.Helper()
	var out bytes.Buffer
	srv := NewServer(&s.input, &out, parser.Options{}, testutil.NewTestLogger(s.t))
	if store != nil {
		srv.SetStore(store)
	}
	err := srv.Run()
	return readTranscript(s.t, &out), err
}

type transcript struct {
	messages []JSONRPCMessage
}

func readTranscript(t *testing.T, r io.Reader) *transcript {
	t.Helper()
	br := bufio.NewReader(r)
	tr := &transcript{}
	for {
		line, err := br.ReadString('\n')
		if err == io.EOF {
			return tr
		}
		require.NoError(t, err)
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
		require.NoError(t, err)
		_, err = br.ReadString('\n')
		require.NoError(t, err)
		body := make([]byte, n)
		_, err = io.ReadFull(br, body)
		require.NoError(t, err)

		var msg JSONRPCMessage
		require.NoError(t, json.Unmarshal(body, &msg))
		tr.messages = append(tr.messages, msg)
	}
}

func (tr *transcript) response(t *testing.T, id int) JSONRPCMessage {
	t.Helper()
	want := strconv.Itoa(id)
	for _, msg := range tr.messages {
		if msg.ID != nil && string(*msg.ID) == want {
			return msg
		}
	}
	require.Failf(t, "missing response", "no response with id %d", id)
	return JSONRPCMessage{}
}

func (tr *transcript) result(t *testing.T, id int, v any) {
	t.Helper()
	msg := tr.response(t, id)
	require.Nil(t, msg.Error)
	require.NoError(t, json.Unmarshal(msg.Result, v))
}

func (tr *transcript) notifications(method string) []JSONRPCMessage {
	var out []JSONRPCMessage
	for _, msg := range tr.messages {
		if msg.ID == nil && msg.Method == method {
			out = append(out, msg)
		}
	}
	return out
}

func openParams(uri, text string) map[string]any {
	return map[string]any{"textDocument": map[string]any{
		"uri": uri, "languageId": "quill", "version": 1, "text": text,
	}}
}

func positionParams(uri string, line, char int) map[string]any {
	return map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     map[string]any{"line": line, "character": char},
	}
}

func TestServer_Initialize(t *testing.T) {
	s := newSession(t)
	id := s.request("initialize", map[string]any{"processId": 1})
	s.notify("initialized", map[string]any{})
	s.stop()

	tr, err := s.run(nil)
	require.NoError(t, err)

	var result InitializeResult
	tr.result(t, id, &result)
	caps := result.Capabilities
	require.NotNil(t, caps.TextDocumentSync)
	assert.True(t, caps.TextDocumentSync.OpenClose)
	assert.Equal(t, TextDocumentSyncKindFull, caps.TextDocumentSync.Change)
	assert.True(t, caps.HoverProvider)
	assert.True(t, caps.DefinitionProvider)
	assert.True(t, caps.DocumentSymbolProvider)
	assert.True(t, caps.DocumentFormattingProvider)

	require.Len(t, tr.notifications("window/showMessage"), 1)
}

func TestServer_Lifecycle(t *testing.T) {
	t.Run("exit before shutdown", func(t *testing.T) {
		s := newSession(t)
		s.notify("exit", nil)
		_, err := s.run(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exit received before shutdown")
	})

	t.Run("end of stream", func(t *testing.T) {
		s := newSession(t)
		s.start("")
		_, err := s.run(nil)
		assert.NoError(t, err)
	})

	t.Run("not initialized", func(t *testing.T) {
		s := newSession(t)
		id := s.request("textDocument/hover", positionParams("file:///a.q", 0, 0))
		s.stop()
		tr, err := s.run(nil)
		require.NoError(t, err)
		msg := tr.response(t, id)
		require.NotNil(t, msg.Error)
		assert.Equal(t, codeNotInitialized, msg.Error.Code)
	})

	t.Run("after shutdown", func(t *testing.T) {
		s := newSession(t)
		s.start("")
		s.request("shutdown", nil)
		id := s.request("textDocument/hover", positionParams("file:///a.q", 0, 0))
		s.notify("exit", nil)
		tr, err := s.run(nil)
		require.NoError(t, err)
		msg := tr.response(t, id)
		require.NotNil(t, msg.Error)
		assert.Equal(t, codeInvalidRequest, msg.Error.Code)
	})

	t.Run("method not found", func(t *testing.T) {
		s := newSession(t)
		s.start("")
		id := s.request("textDocument/completion", positionParams("file:///a.q", 0, 0))
		s.stop()
		tr, err := s.run(nil)
		require.NoError(t, err)
		msg := tr.response(t, id)
		require.NotNil(t, msg.Error)
		assert.Equal(t, codeMethodNotFound, msg.Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newSession(t)
		s.raw("{not json")
		s.start("")
		s.stop()
		tr, err := s.run(nil)
		require.NoError(t, err)
		require.NotEmpty(t, tr.messages)
		require.NotNil(t, tr.messages[0].Error)
		assert.Equal(t, codeParseError, tr.messages[0].Error.Code)
	})

	t.Run("negative content length", func(t *testing.T) {
		s := newSession(t)
		s.input.WriteString("Content-Length: -5\r\n\r\n{}")
		var err error
		require.NotPanics(t, func() { _, err = s.run(nil) })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid Content-Length: -5")
	})
}

func TestServer_PublishDiagnostics(t *testing.T) {
	uri := "file:///work/main.q"
	s := newSession(t)
	s.start("")
	s.notify("textDocument/didOpen", openParams(uri, "let x = (\n"))
	s.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": 2},
		"contentChanges": []map[string]any{{"text": "let x = 1\n"}},
	})
	s.notify("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": uri}})
	s.stop()

	tr, err := s.run(nil)
	require.NoError(t, err)

	published := tr.notifications("textDocument/publishDiagnostics")
	require.Len(t, published, 3)

	var first PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(published[0].Params, &first))
	assert.Equal(t, uri, first.URI)
	require.NotEmpty(t, first.Diagnostics)
	for _, d := range first.Diagnostics {
		assert.Equal(t, diagnosticSource, d.Source)
		assert.NotEmpty(t, d.Message)
	}
	assert.Equal(t, DiagnosticSeverityError, first.Diagnostics[0].Severity)

	for _, msg := range published[1:] {
		var p PublishDiagnosticsParams
		require.NoError(t, json.Unmarshal(msg.Params, &p))
		assert.Empty(t, p.Diagnostics)
	}
}

func TestServer_Hover(t *testing.T) {
	uri := "file:///work/main.q"
	s := newSession(t)
	s.start("")
	s.notify("textDocument/didOpen", openParams(uri, "let x = 1\nfn f() { return x }\n"))
	use := s.request("textDocument/hover", positionParams(uri, 1, 16))
	blank := s.request("textDocument/hover", positionParams(uri, 0, 3))
	s.stop()

	tr, err := s.run(nil)
	require.NoError(t, err)

	var hover Hover
	tr.result(t, use, &hover)
	assert.Equal(t, MarkupKindMarkdown, hover.Contents.Kind)
	assert.True(t, strings.HasPrefix(hover.Contents.Value, "`x`"), hover.Contents.Value)
	assert.Contains(t, hover.Contents.Value, "let `x` at /work/main.q:1:5")
	require.NotNil(t, hover.Range)
	assert.Equal(t, Position{Line: 1, Character: 16}, hover.Range.Start)

	assert.Equal(t, "null", string(tr.response(t, blank).Result))
}

func TestServer_Definition(t *testing.T) {
	uri := "file:///work/main.q"

	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(filepath.Join(t.TempDir(), "index.db")))
	require.NoError(t, store.Migrate())
	require.NoError(t, store.SaveFile(context.Background(),
		&state.File{Path: "/work/lib.q", Hash: "h"},
		[]state.Declaration{{Name: "helper", Kind: "fn", Line: 3, Column: 4}},
	))

	s := newSession(t)
	s.start("")
	s.notify("textDocument/didOpen", openParams(uri, "let x = 1\nfn f() { return x + helper() }\n"))
	local := s.request("textDocument/definition", positionParams(uri, 1, 16))
	remote := s.request("textDocument/definition", positionParams(uri, 1, 20))
	s.stop()

	tr, err := s.run(store)
	require.NoError(t, err)

	var locs []Location
	tr.result(t, local, &locs)
	require.Len(t, locs, 1)
	assert.Equal(t, uri, locs[0].URI)
	assert.Equal(t, Range{
		Start: Position{Line: 0, Character: 4},
		End:   Position{Line: 0, Character: 5},
	}, locs[0].Range)

	locs = nil
	tr.result(t, remote, &locs)
	require.Len(t, locs, 1)
	assert.Equal(t, "file:///work/lib.q", locs[0].URI)
	assert.Equal(t, Position{Line: 2, Character: 3}, locs[0].Range.Start)
	assert.Equal(t, Position{Line: 2, Character: 9}, locs[0].Range.End)
}

func TestServer_DocumentSymbol(t *testing.T) {
	uri := "file:///work/shapes.q"
	src := "struct Point {\n    x: f64\n    fn len() -> f64 {}\n}\nconst ORIGIN = 0\n"

	s := newSession(t)
	s.start("")
	s.notify("textDocument/didOpen", openParams(uri, src))
	id := s.request("textDocument/documentSymbol", map[string]any{"textDocument": map[string]any{"uri": uri}})
	missing := s.request("textDocument/documentSymbol", map[string]any{"textDocument": map[string]any{"uri": "file:///nope.q"}})
	s.stop()

	tr, err := s.run(nil)
	require.NoError(t, err)

	var syms []DocumentSymbol
	tr.result(t, id, &syms)
	require.Len(t, syms, 2)

	point := syms[0]
	assert.Equal(t, "Point", point.Name)
	assert.Equal(t, SymbolKindStruct, point.Kind)
	assert.Equal(t, Position{Line: 0, Character: 7}, point.SelectionRange.Start)
	assert.Equal(t, uint32(0), point.Range.Start.Line)
	assert.Equal(t, uint32(3), point.Range.End.Line)
	require.Len(t, point.Children, 2)
	assert.Equal(t, SymbolKindField, point.Children[0].Kind)
	assert.Equal(t, "len", point.Children[1].Name)
	assert.Equal(t, SymbolKindMethod, point.Children[1].Kind)

	assert.Equal(t, "ORIGIN", syms[1].Name)
	assert.Equal(t, SymbolKindConstant, syms[1].Kind)

	var none []DocumentSymbol
	tr.result(t, missing, &none)
	assert.Empty(t, none)
}

func TestServer_Formatting(t *testing.T) {
	messy := "file:///work/messy.q"
	clean := "file:///work/clean.q"
	broken := "file:///work/broken.q"

	s := newSession(t)
	s.start("")
	s.notify("textDocument/didOpen", openParams(messy, "let   x =  f( 1 ,2 )\n"))
	s.notify("textDocument/didOpen", openParams(clean, "let x = 1\n"))
	s.notify("textDocument/didOpen", openParams(broken, "let s = \"open\n"))
	params := func(uri string) map[string]any {
		return map[string]any{
			"textDocument": map[string]any{"uri": uri},
			"options":      map[string]any{"tabSize": 4, "insertSpaces": true},
		}
	}
	messyID := s.request("textDocument/formatting", params(messy))
	cleanID := s.request("textDocument/formatting", params(clean))
	brokenID := s.request("textDocument/formatting", params(broken))
	s.stop()

	tr, err := s.run(nil)
	require.NoError(t, err)

	var edits []TextEdit
	tr.result(t, messyID, &edits)
	require.Len(t, edits, 1)
	assert.Equal(t, "let x = f(1, 2)\n", edits[0].NewText)
	assert.Equal(t, Range{End: Position{Line: 1, Character: 0}}, edits[0].Range)

	edits = nil
	tr.result(t, cleanID, &edits)
	assert.Empty(t, edits)

	edits = nil
	tr.result(t, brokenID, &edits)
	assert.Empty(t, edits)
}

func TestServer_InitializeLoadsProject(t *testing.T) {
	t.Run("without index", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "quill.yaml"), []byte("max_depth: 8\n"), 0o644))

		s := newSession(t)
		s.start(PathToURI(root))
		s.stop()

		tr, err := s.run(nil)
		require.NoError(t, err)
		assert.Len(t, tr.notifications("window/showMessage"), 1)
	})

	t.Run("with index", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "quill.yaml"), []byte("max_depth: 8\n"), 0o644))

		store := state.NewSQLiteStore(nil)
		require.NoError(t, store.Open(filepath.Join(root, ".quill", "index.db")))
		require.NoError(t, store.Migrate())
		require.NoError(t, store.SaveFile(context.Background(),
			&state.File{Path: filepath.Join(root, "lib.q"), Hash: "h"},
			[]state.Declaration{{Name: "helper", Kind: "fn", Line: 1, Column: 4}},
		))
		require.NoError(t, store.Close())

		uri := PathToURI(filepath.Join(root, "main.q"))
		s := newSession(t)
		s.start(PathToURI(root))
		s.notify("textDocument/didOpen", openParams(uri, "let x = helper()\n"))
		id := s.request("textDocument/definition", positionParams(uri, 0, 8))
		s.stop()

		tr, err := s.run(nil)
		require.NoError(t, err)
		assert.Empty(t, tr.notifications("window/showMessage"))

		var locs []Location
		tr.result(t, id, &locs)
		require.Len(t, locs, 1)
		assert.Equal(t, PathToURI(filepath.Join(root, "lib.q")), locs[0].URI)
	})
}
