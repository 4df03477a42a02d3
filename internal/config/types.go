// Package config provides the configuration shared by the quill CLI, the
// language server and the watcher.
//
// Values are layered with koanf: built-in defaults, then quill.yaml (searched
// upward from the working directory), then QUILL_* environment variables, then
// explicitly set command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/parser"
)

// Config holds all configuration options.
type Config struct {
	TabWidth     int      `koanf:"tab_width"`
	SubTokens    bool     `koanf:"sub_tokens"`
	KeepComments bool     `koanf:"keep_comments"`
	MaxErrors    int      `koanf:"max_errors"`
	MaxTokens    int      `koanf:"max_tokens"`
	MaxDepth     int      `koanf:"max_depth"`
	Jobs         int      `koanf:"jobs"`
	IndexPath    string   `koanf:"index_path"`
	Output       string   `koanf:"output"`
	LogLevel     string   `koanf:"log_level"`
	LogFile      string   `koanf:"log_file"`
	Include      []string `koanf:"include"`
	Watch        Watch    `koanf:"watch"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// File is the config file that was loaded, "" when none was found.
	File string `koanf:"-"`
}

// Watch configures `quill watch`.
type Watch struct {
	Debounce time.Duration `koanf:"debounce"`
}

// LexerOptions returns the scanning options the configuration selects.
func (c *Config) LexerOptions() lexer.Options {
	return lexer.Options{
		TabWidth:     c.TabWidth,
		SubTokens:    c.SubTokens,
		KeepComments: c.KeepComments,
		MaxTokens:    c.MaxTokens,
		MaxErrors:    c.MaxErrors,
	}
}

// ParserOptions returns the parsing options the configuration selects.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{Lexer: c.LexerOptions(), MaxDepth: c.MaxDepth}
}

// SlogLevel maps LogLevel to a slog level. Unknown names map to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.TabWidth < 1 || c.TabWidth > 16 {
		return fmt.Errorf("tab_width must be between 1 and 16, got %d", c.TabWidth)
	}
	if c.MaxErrors < 0 {
		return fmt.Errorf("max_errors must not be negative, got %d", c.MaxErrors)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative, got %d", c.MaxTokens)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if !ValidOutput(c.Output) {
		return fmt.Errorf("invalid output format %q (valid: %s)", c.Output, strings.Join(OutputFormats, ", "))
	}
	return nil
}

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// ValidOutput reports whether s names an output format.
func ValidOutput(s string) bool {
	for _, f := range OutputFormats {
		if s == f {
			return true
		}
	}
	return false
}
