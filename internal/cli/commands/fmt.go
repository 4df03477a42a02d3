package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/quill-lang/quill/pkg/format"
	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/spf13/cobra"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Write bool
	List  bool
	Check bool
}

// ErrUnformatted is returned by fmt --check when a file needs formatting.
var ErrUnformatted = errors.New("files need formatting")

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}
	cmd := &cobra.Command{
		Use:   "fmt [path...]",
		Short: "Format source files",
		Long: `Rewrite the spacing between tokens into canonical form.

Only whitespace changes: runs of spaces collapse, brackets and separators
are spaced uniformly, indentation is expanded to spaces and at most one blank
line is kept. Shell escape lines are copied verbatim. Files with lexical
errors are left alone and reported.

Without flags the formatted source is printed to standard output.`,
		Example: `  # Format files in place
  quill fmt -w .

  # List files that are not formatted
  quill fmt -l src

  # Fail in CI when formatting is needed
  quill fmt --check .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write the result back to the files")
	cmd.Flags().BoolVarP(&opts.List, "list", "l", false, "List files whose formatting differs")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Fail if any file needs formatting")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts *FmtOptions) error {
	env := GetEnv(cmd)
	r := env.Renderer

	if len(args) == 0 {
		return errors.New("no input files")
	}
	paths, err := frontend.Expand(args, env.Config.Include)
	if err != nil {
		return err
	}

	var failed, changed int
	for _, path := range paths {
		src, err := source.Load(path)
		if err != nil {
			return err
		}
		out, err := format.Source(src, env.Config.LexerOptions())
		if err != nil {
			failed++
			r.Error(err.Error())
			continue
		}
		if !opts.Write && !opts.List && !opts.Check {
			_, _ = r.Writer().Write(out)
			continue
		}
		if bytes.Equal(out, src.Data) {
			continue
		}
		changed++

		switch {
		case opts.Write:
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			env.Logger.Debug("formatted", "path", path)
			if opts.List {
				r.Println(path)
			}
		default:
			r.Println(path)
		}
	}

	if failed > 0 {
		return ErrDiagnostics
	}
	if opts.Check && !opts.Write && changed > 0 {
		return ErrUnformatted
	}
	return nil
}
