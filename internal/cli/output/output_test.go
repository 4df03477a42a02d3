package output

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func TestMode(t *testing.T) {
	assert.Equal(t, ModeJSON, Mode("json"))
	assert.Equal(t, ModeYAML, Mode("yaml"))
	assert.Equal(t, ModeAuto, Mode(""))
	assert.Equal(t, ModeAuto, Mode("html"))
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{ModeText, false, ModeText},
		{ModeJSON, true, ModeJSON},
	}

	for _, tt := range tests {
		r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
		assert.Equal(t, tt.want, r.EffectiveMode(), "%s tty=%v", tt.mode, tt.isTTY)
	}
}

func TestRenderer_NoColorWithoutTTY(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeText)

	r.Header("Tokens")
	r.Success("done")
	r.Warning("careful")
	r.Error("failed")

	assert.False(t, ansi.MatchString(out.String()+errOut.String()))
	assert.Contains(t, out.String(), "Tokens")
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, errOut.String(), "! careful")
	assert.Contains(t, errOut.String(), "✗ failed")
}

func TestRenderer_Table(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRendererWithTTY(&out, &out, false, ModeMarkdown)
		r.Table([]string{"Kind", "Text"}, [][]string{{"Variable", "x"}})

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "| Kind | Text |", lines[0])
		assert.Equal(t, "| Variable | x |", lines[2])
	})

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRendererWithTTY(&out, &out, true, ModeText)
		r.Table([]string{"Kind"}, [][]string{{"Variable"}})
		assert.Contains(t, out.String(), "┌")
		assert.Contains(t, out.String(), "Variable")
	})
}

func TestRenderer_Data(t *testing.T) {
	v := map[string]any{"name": "x", "line": 1}

	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &out, false, ModeJSON)
	ok, err := r.Data(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"x","line":1}`, out.String())

	out.Reset()
	r = NewRendererWithTTY(&out, &out, false, ModeYAML)
	ok, err = r.Data(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "line: 1\nname: x\n", out.String())

	r = NewRendererWithTTY(&out, &out, false, ModeMarkdown)
	ok, err = r.Data(v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Summary", FormatHeader("Summary", 2))
	assert.Equal(t, "# Top", FormatHeader("Top", 0))
	assert.Equal(t, "- **files**: 3", FormatKeyValue("files", 3))
	assert.Equal(t, "```quill\nlet x = 1\n```", FormatCodeBlock("quill", "let x = 1\n"))
}
