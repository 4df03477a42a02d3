package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/quill-lang/quill/pkg/token"
	"github.com/spf13/cobra"
)

// LexOptions holds options for the lex command.
type LexOptions struct {
	Source string
	Indent bool
}

// TokenOutput is the machine-readable form of a token.
type TokenOutput struct {
	Index  int    `json:"index" yaml:"index"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Kind   string `json:"kind" yaml:"kind"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
	Level  int    `json:"level,omitempty" yaml:"level,omitempty"`
}

// LexOutput is the JSON/YAML output of lex for one file.
type LexOutput struct {
	File        string             `json:"file" yaml:"file"`
	Tokens      []TokenOutput      `json:"tokens" yaml:"tokens"`
	Diagnostics []DiagnosticOutput `json:"diagnostics" yaml:"diagnostics"`
}

// NewLexCommand creates the lex command.
func NewLexCommand() *cobra.Command {
	opts := &LexOptions{}
	cmd := &cobra.Command{
		Use:   "lex [file...]",
		Short: "Print the token stream of source files",
		Long: `Scan source files and print their tokens with positions and kinds.

Indentation tokens are hidden unless --indent is given. Lexical diagnostics
follow the token listing; the command fails when there are errors.`,
		Example: `  # Tokens of a file
  quill lex main.q

  # Tokens of an inline snippet, as JSON
  quill lex -e 'let x = a<b>(c)' -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLex(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "eval", "e", "", "Lex this source text instead of files")
	cmd.Flags().BoolVar(&opts.Indent, "indent", false, "Show indentation tokens")

	return cmd
}

func runLex(cmd *cobra.Command, args []string, opts *LexOptions) error {
	env := GetEnv(cmd)
	r := env.Renderer

	var files []*source.File
	switch {
	case opts.Source != "":
		files = append(files, source.NewString("<input>", opts.Source))
	case len(args) == 0:
		return errors.New("no input files (pass paths or -e SOURCE)")
	default:
		paths, err := frontend.Expand(args, env.Config.Include)
		if err != nil {
			return err
		}
		for _, p := range paths {
			f, err := source.Load(p)
			if err != nil {
				return err
			}
			files = append(files, f)
		}
	}

	lexOpts := env.Config.LexerOptions()
	var results []LexOutput
	var sets []diagnosed
	for _, f := range files {
		lx := lexer.New(f, nil, lexOpts)
		lx.All()
		set := diagnosed{src: f, diags: lx.Diagnostics()}
		sets = append(sets, set)
		results = append(results, LexOutput{
			File:        f.Path,
			Tokens:      tokenOutputs(lx, opts.Indent),
			Diagnostics: diagnosticOutputs([]diagnosed{set}),
		})
	}

	if ok, err := r.Data(results); ok {
		if err != nil {
			return err
		}
		if errorCount(sets) > 0 {
			return ErrDiagnostics
		}
		return nil
	}

	for _, res := range results {
		if len(results) > 1 {
			r.Header(res.File)
		}
		rows := make([][]string, 0, len(res.Tokens))
		for _, t := range res.Tokens {
			text := t.Text
			if t.Kind == token.Indent.String() {
				text = strconv.Itoa(t.Level)
			}
			rows = append(rows, []string{
				strconv.Itoa(t.Index),
				fmt.Sprintf("%d:%d", t.Line, t.Column),
				t.Kind,
				text,
			})
		}
		r.Table([]string{"#", "Pos", "Kind", "Text"}, rows)
	}

	if printDiagnostics(r, sets) > 0 {
		return ErrDiagnostics
	}
	return nil
}

func tokenOutputs(lx *lexer.Lexer, indent bool) []TokenOutput {
	toks := lx.Tokens()
	out := make([]TokenOutput, 0, len(toks))
	for i, t := range toks {
		if t.Kind == token.Indent && !indent {
			continue
		}
		to := TokenOutput{
			Index:  i,
			Line:   int(t.Line) + 1,
			Column: int(t.Offset) + 1,
			Kind:   t.Kind.String(),
			Level:  t.Level(),
		}
		if t.Kind != token.Indent && t.Kind != token.EOF {
			to.Text = lx.Text(i)
		}
		out = append(out, to)
	}
	return out
}
