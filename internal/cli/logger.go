package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quill-lang/quill/internal/config"
	slogmulti "github.com/samber/slog-multi"
)

// newLogger builds the command logger: text records on w at the configured
// level, fanned out to a JSON log file at debug level when log_file is set.
// The returned function closes the file.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, func() error, error) {
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	if cfg.LogFile == "" {
		return slog.New(text), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})

	return slog.New(slogmulti.Fanout(text, file)), f.Close, nil
}
