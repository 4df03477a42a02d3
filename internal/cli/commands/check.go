package commands

import (
	"fmt"

	"github.com/quill-lang/quill/internal/cli/output"
	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/spf13/cobra"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Source string
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report lexical and syntax errors",
		Long: `Parse source files and report their diagnostics.

Directories are searched for files matching the include globs of quill.yaml
(default **/*.q). Files are parsed concurrently; --jobs bounds how many at a
time. The command fails when any file has errors.`,
		Example: `  # Check a project
  quill check .

  # Machine-readable diagnostics
  quill check src -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "eval", "e", "", "Check this source text instead of files")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	env := GetEnv(cmd)
	r := env.Renderer

	units, err := parseInputs(cmd, env, args, opts.Source)
	if err != nil {
		return err
	}
	errs := reportCheck(r, units)
	env.Logger.Debug("check finished", "files", len(units), "errors", errs)
	if errs > 0 {
		return ErrDiagnostics
	}
	return nil
}

// reportCheck renders the result of checking units and returns the number
// of errors.
func reportCheck(r *output.Renderer, units []*frontend.Unit) int {
	sets := fromUnits(units)
	errs := errorCount(sets)

	ok, err := r.Data(CheckOutput{
		Files:       len(units),
		Errors:      errs,
		Diagnostics: diagnosticOutputs(sets),
	})
	if ok {
		if err != nil {
			r.Error(err.Error())
		}
		return errs
	}

	printDiagnostics(r, sets)
	summary := fmt.Sprintf("%d %s checked, %d %s", len(units), plural(len(units), "file", "files"), errs, plural(errs, "error", "errors"))
	if errs > 0 {
		r.Error(summary)
	} else {
		r.Success(summary)
	}
	return errs
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
