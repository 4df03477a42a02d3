package commands

import (
	"os"

	"github.com/quill-lang/quill/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. It reports
diagnostics as documents change and answers hover, definition, document
symbol and formatting requests. When the workspace named by the client's
rootUri has a declaration index (quill index), definitions resolve across
files.`,
		Example: `  # Start the server (usually launched by an editor)
  quill lsp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command) error {
	env := GetEnv(cmd)
	server := lsp.NewServer(os.Stdin, os.Stdout, env.Config.ParserOptions(), env.Logger)
	return server.Run()
}
