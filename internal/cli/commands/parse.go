package commands

import (
	"errors"
	"strings"

	"github.com/quill-lang/quill/internal/cli/output"
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/spf13/cobra"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	Source string
	Expr   bool
}

// ParseOutput is the JSON/YAML output of parse for one file.
type ParseOutput struct {
	File        string             `json:"file" yaml:"file"`
	Tree        *ast.DumpNode      `json:"tree" yaml:"tree"`
	Diagnostics []DiagnosticOutput `json:"diagnostics" yaml:"diagnostics"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}
	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Print the syntax tree of source files",
		Long: `Parse source files and print their syntax trees.

Each node shows its kind, its name or literal text, and the half-open range
of token indices it covers. With --expr the input is parsed as a single
expression and its prefix form is printed as well.`,
		Example: `  # Syntax tree of a file
  quill parse main.q

  # How an expression associates
  quill parse --expr -e 'a = b || c && d'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "eval", "e", "", "Parse this source text instead of files")
	cmd.Flags().BoolVar(&opts.Expr, "expr", false, "Parse the input as one expression (requires -e)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	env := GetEnv(cmd)
	r := env.Renderer

	if opts.Expr {
		if opts.Source == "" {
			return errors.New("--expr requires -e SOURCE")
		}
		return renderExpr(r, opts.Source, env.Config.ParserOptions())
	}

	units, err := parseInputs(cmd, env, args, opts.Source)
	if err != nil {
		return err
	}

	results := make([]ParseOutput, 0, len(units))
	for _, u := range units {
		results = append(results, ParseOutput{
			File:        u.Source.Path,
			Tree:        ast.Dump(u.File, u.Strings()),
			Diagnostics: diagnosticOutputs(fromUnits([]*frontend.Unit{u})),
		})
	}

	if ok, err := r.Data(results); ok {
		if err != nil {
			return err
		}
		if frontend.ErrorCount(units) > 0 {
			return ErrDiagnostics
		}
		return nil
	}

	for _, res := range results {
		printTree(r, res.File, res.Tree, len(results) > 1)
	}
	if printDiagnostics(r, fromUnits(units)) > 0 {
		return ErrDiagnostics
	}
	return nil
}

func renderExpr(r *output.Renderer, text string, opts parser.Options) error {
	src := source.NewString("<input>", text)
	p := parser.New(lexer.New(src, nil, opts.Lexer), opts)
	x := p.ParseExpr()
	set := []diagnosed{{src: src, diags: p.Diagnostics()}}

	tree := ast.Dump(x, p.Strings())
	if ok, err := r.Data(ParseOutput{File: src.Path, Tree: tree, Diagnostics: diagnosticOutputs(set)}); ok {
		if err != nil {
			return err
		}
		if errorCount(set) > 0 {
			return ErrDiagnostics
		}
		return nil
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Printf("`%s`\n\n", ast.Sexpr(x, p.Strings()))
	} else {
		r.Println(r.Styles().Code.Render(ast.Sexpr(x, p.Strings())))
	}
	printTree(r, src.Path, tree, false)
	if printDiagnostics(r, set) > 0 {
		return ErrDiagnostics
	}
	return nil
}

func printTree(r *output.Renderer, path string, tree *ast.DumpNode, titled bool) {
	if r.EffectiveMode() == output.ModeMarkdown {
		if titled {
			r.Println(output.FormatHeader(path, 2))
			r.Println("")
		}
		r.Println(output.FormatCodeBlock("", tree.Format()))
		r.Println("")
		return
	}
	if titled {
		r.Header(path)
	}
	r.Printf("%s", strings.TrimRight(tree.Format(), "\n")+"\n")
}
