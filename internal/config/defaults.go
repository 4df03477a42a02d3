package config

import (
	"time"

	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/parser"
)

// Default configuration values.
const (
	DefaultIndexPath = ".quill/index.db"
	DefaultOutput    = "auto" // TTY=text, otherwise markdown
	DefaultLogLevel  = "warn"
	DefaultMaxErrors = 100
	DefaultDebounce  = 200 * time.Millisecond
)

// DefaultInclude selects the files a directory argument expands to.
var DefaultInclude = []string{"**/*.q"}

func defaults() map[string]any {
	return map[string]any{
		"tab_width":      lexer.DefaultTabWidth,
		"sub_tokens":     false,
		"keep_comments":  false,
		"max_errors":     DefaultMaxErrors,
		"max_tokens":     0,
		"max_depth":      parser.DefaultMaxDepth,
		"jobs":           0,
		"index_path":     DefaultIndexPath,
		"output":         DefaultOutput,
		"log_level":      DefaultLogLevel,
		"log_file":       "",
		"include":        DefaultInclude,
		"watch.debounce": DefaultDebounce.String(),
	}
}
