package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quill-lang/quill/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{
		"config", "output", "tab-width", "keep-comments", "sub-tokens", "max-errors",
		"max-tokens", "max-depth", "jobs", "index-path", "log-level", "log-file",
	} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %q should exist", name)
	}
	assert.Equal(t, "o", cmd.PersistentFlags().Lookup("output").Shorthand)
	assert.Equal(t, "j", cmd.PersistentFlags().Lookup("jobs").Shorthand)
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "lex", "parse", "check", "fmt", "index", "lookup", "repl", "watch", "lsp", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestCompletionCommand(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"completion", "bash"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "bash completion")
}

func TestConfigFileFlag(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "quill.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: json\n"), 0o600))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--config", cfgPath, "lex", "-e", "x"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "["), "json output expected, got %q", buf.String())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, closeLog, err := newLogger(&config.Config{LogLevel: "info"}, &buf)
	require.NoError(t, err)
	defer func() { _ = closeLog() }()

	logger.Debug("hidden")
	logger.Info("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown k=1")
}

func TestNewLogger_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "quill.log")
	logger, closeLog, err := newLogger(&config.Config{LogLevel: "warn", LogFile: path}, &buf)
	require.NoError(t, err)

	logger.Debug("to file only")
	logger.Log(t.Context(), slog.LevelWarn, "everywhere")
	require.NoError(t, closeLog())

	assert.NotContains(t, buf.String(), "to file only")
	assert.Contains(t, buf.String(), "everywhere")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file only"`)
	assert.Contains(t, string(data), `"msg":"everywhere"`)
}
