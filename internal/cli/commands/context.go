// Package commands implements the quill subcommands.
package commands

import (
	"context"
	"log/slog"

	"github.com/quill-lang/quill/internal/cli/output"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/spf13/cobra"
)

// Env is what the root command prepares for every subcommand.
type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

type envKey struct{}

// WithEnv stores env in ctx.
func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// GetEnv retrieves the environment from the command context. Commands run
// without the root command get built-in defaults.
func GetEnv(cmd *cobra.Command) *Env {
	if cmd.Context() != nil {
		if env, ok := cmd.Context().Value(envKey{}).(*Env); ok {
			return env
		}
	}
	cfg, err := config.LoadFromDir("")
	if err != nil {
		cfg = &config.Config{}
	}
	return &Env{
		Config:   cfg,
		Logger:   slog.New(slog.DiscardHandler),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}

// FrontendOptions returns the options for parsing a batch of files.
func (e *Env) FrontendOptions() frontend.Options {
	return frontend.Options{
		Parser: e.Config.ParserOptions(),
		Jobs:   e.Config.Jobs,
		Logger: e.Logger,
	}
}
