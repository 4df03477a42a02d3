// Package cli provides the command-line interface for Quill.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/quill-lang/quill/internal/cli/commands"
	"github.com/quill-lang/quill/internal/cli/output"
	"github.com/quill-lang/quill/internal/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile  string
		closeLog = func() error { return nil }
	)

	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "Quill - compiler front end",
		Long: `Quill lexes and parses Quill source files.

It reports lexical and syntax diagnostics, dumps tokens and syntax trees,
formats source, keeps a declaration index for cross-file lookups, and serves
the language server used by editors.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, closer, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			closeLog = closer
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}

			cmd.SetContext(commands.WithEnv(cmd.Context(), &commands.Env{
				Config:   cfg,
				Logger:   logger,
				Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
			}))
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return closeLog()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags; set flags override quill.yaml and QUILL_* variables
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: quill.yaml in the project root)")
	flags.StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")
	flags.Int("tab-width", 0, "Columns a tab advances indentation to")
	flags.Bool("keep-comments", false, "Keep comment tokens")
	flags.Bool("sub-tokens", false, "Emit number suffix and unit sub-tokens")
	flags.Int("max-errors", 0, "Stop a unit after this many errors (0 = unlimited)")
	flags.Int("max-tokens", 0, "Token limit per unit (0 = format limit)")
	flags.Int("max-depth", 0, "Parser nesting limit")
	flags.IntP("jobs", "j", 0, "Files parsed concurrently (0 = GOMAXPROCS)")
	flags.String("index-path", "", "Path to the declaration index")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-file", "", "Also write JSON logs to this file")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewLexCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewFmtCommand())
	rootCmd.AddCommand(commands.NewIndexCommand())
	rootCmd.AddCommand(commands.NewLookupCommand())
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewLSPCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Diagnostics and unformatted paths have been printed already.
		if !errors.Is(err, commands.ErrDiagnostics) && !errors.Is(err, commands.ErrUnformatted) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for Quill.

To load completions:

Bash:
  $ source <(quill completion bash)

Zsh:
  $ quill completion zsh > "${fpath[1]}/_quill"

Fish:
  $ quill completion fish | source

PowerShell:
  PS> quill completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
