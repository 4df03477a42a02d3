package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/quill-lang/quill/internal/cli/output"
	"github.com/quill-lang/quill/pkg/diag"
	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/spf13/cobra"
)

// ErrDiagnostics is returned by commands whose input has errors. The
// diagnostics themselves have already been printed.
var ErrDiagnostics = errors.New("source has errors")

// DiagnosticOutput is the machine-readable form of a diagnostic.
type DiagnosticOutput struct {
	File      string `json:"file" yaml:"file"`
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	EndColumn int    `json:"end_column" yaml:"end_column"`
	Severity  string `json:"severity" yaml:"severity"`
	Category  string `json:"category" yaml:"category"`
	Message   string `json:"message" yaml:"message"`
}

// CheckOutput is the JSON/YAML output of check.
type CheckOutput struct {
	Files       int                `json:"files" yaml:"files"`
	Errors      int                `json:"errors" yaml:"errors"`
	Diagnostics []DiagnosticOutput `json:"diagnostics" yaml:"diagnostics"`
}

// diagnosed pairs a source file with the diagnostics found in it.
type diagnosed struct {
	src   *source.File
	diags *diag.List
}

func fromUnits(units []*frontend.Unit) []diagnosed {
	out := make([]diagnosed, 0, len(units))
	for _, u := range units {
		out = append(out, diagnosed{src: u.Source, diags: u.Diagnostics()})
	}
	return out
}

type reported struct {
	src *source.File
	d   diag.Diagnostic
}

func collect(sets []diagnosed) []reported {
	var out []reported
	for _, s := range sets {
		for _, d := range s.diags.Sorted() {
			out = append(out, reported{src: s.src, d: d})
		}
	}
	return out
}

func errorCount(sets []diagnosed) int {
	n := 0
	for _, s := range sets {
		n += s.diags.ErrorCount()
	}
	return n
}

func diagnosticOutputs(sets []diagnosed) []DiagnosticOutput {
	items := collect(sets)
	out := make([]DiagnosticOutput, 0, len(items))
	for _, it := range items {
		span := it.src.Span(it.d.At)
		out = append(out, DiagnosticOutput{
			File:      it.src.Path,
			Line:      span.Start.Line,
			Column:    span.Start.Column,
			EndColumn: span.End.Column,
			Severity:  it.d.Severity.String(),
			Category:  it.d.Category.String(),
			Message:   it.d.Message,
		})
	}
	return out
}

// printDiagnostics writes diagnostics in the renderer's human mode and
// returns the number of errors.
func printDiagnostics(r *output.Renderer, sets []diagnosed) int {
	items := collect(sets)
	markdown := r.EffectiveMode() == output.ModeMarkdown
	if markdown && len(items) > 0 {
		r.Println(output.FormatHeader("Diagnostics", 2))
		r.Println("")
	}
	for _, it := range items {
		if markdown {
			printDiagnosticMarkdown(r, it)
		} else {
			printDiagnosticText(r, it)
		}
	}
	if markdown && len(items) > 0 {
		r.Println("")
	}
	return errorCount(sets)
}

func printDiagnosticText(r *output.Renderer, it reported) {
	styles := r.Styles()
	span := it.src.Span(it.d.At)

	r.Printf("%s %s %s\n",
		styles.Bold.Render(fmt.Sprintf("%s:%d:%d:", it.src.Path, span.Start.Line, span.Start.Column)),
		severityStyle(styles, it.d.Severity).Render(it.d.Severity.String()+":"),
		it.d.Message)

	line := it.src.Line(int(it.d.At.Line))
	if line == nil {
		return
	}
	r.Println(styles.Muted.Render(fmt.Sprintf("%5d | ", span.Start.Line)) + string(line))

	start := min(int(it.d.At.Offset), len(line))
	width := max(int(it.d.At.Size), 1)
	pad := strings.Map(func(c rune) rune {
		if c == '\t' {
			return '\t'
		}
		return ' '
	}, string(line[:start]))
	r.Println(styles.Muted.Render("      | ") + pad + severityStyle(styles, it.d.Severity).Render(strings.Repeat("^", width)))
}

func printDiagnosticMarkdown(r *output.Renderer, it reported) {
	span := it.src.Span(it.d.At)
	r.Printf("- `%s:%d:%d` **%s** (%s): %s\n",
		it.src.Path, span.Start.Line, span.Start.Column,
		it.d.Severity, it.d.Category, it.d.Message)
}

func severityStyle(styles *output.Styles, sev diag.Severity) lipgloss.Style {
	switch sev {
	case diag.SeverityError:
		return styles.Error
	case diag.SeverityWarning:
		return styles.Warning
	case diag.SeverityInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}

// parseInputs parses the files named by args, or text when the inline
// source flag is set.
func parseInputs(cmd *cobra.Command, env *Env, args []string, text string) ([]*frontend.Unit, error) {
	if text != "" {
		return []*frontend.Unit{frontend.ParseString("<input>", text, env.Config.ParserOptions())}, nil
	}
	if len(args) == 0 {
		return nil, errors.New("no input files (pass paths or -e SOURCE)")
	}
	paths, err := frontend.Expand(args, env.Config.Include)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files match %s", strings.Join(env.Config.Include, ", "))
	}
	return frontend.ParseFiles(cmd.Context(), paths, env.FrontendOptions())
}
