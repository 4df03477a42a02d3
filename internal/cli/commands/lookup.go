package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/quill-lang/quill/internal/cli/output"
	"github.com/quill-lang/quill/internal/state"
	"github.com/spf13/cobra"
)

// DeclarationOutput is the JSON/YAML form of an indexed declaration.
type DeclarationOutput struct {
	Name       string `json:"name" yaml:"name"`
	Kind       string `json:"kind" yaml:"kind"`
	Qualifiers string `json:"qualifiers,omitempty" yaml:"qualifiers,omitempty"`
	Container  string `json:"container,omitempty" yaml:"container,omitempty"`
	File       string `json:"file" yaml:"file"`
	Line       int    `json:"line" yaml:"line"`
	Column     int    `json:"column" yaml:"column"`
}

// LookupOptions holds options for the lookup command.
type LookupOptions struct {
	File bool
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand() *cobra.Command {
	opts := &LookupOptions{}
	cmd := &cobra.Command{
		Use:   "lookup <name>",
		Short: "Find declarations in the index",
		Long: `Print where a name is declared, according to the declaration index.

With --file the argument is a source path and every declaration recorded
for that file is listed instead. Run quill index first.`,
		Example: `  # Where is Point declared?
  quill lookup Point

  # Outline of a file
  quill lookup --file src/geometry.q`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.File, "file", false, "List the declarations of a file")

	return cmd
}

func runLookup(cmd *cobra.Command, arg string, opts *LookupOptions) error {
	env := GetEnv(cmd)
	r := env.Renderer

	store, err := openIndex(env)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var decls []*state.Declaration
	if opts.File {
		path, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		decls, err = store.FileDeclarations(cmd.Context(), path)
		if err != nil {
			return err
		}
	} else {
		decls, err = store.Lookup(cmd.Context(), arg)
		if err != nil {
			return err
		}
	}

	out := make([]DeclarationOutput, 0, len(decls))
	for _, d := range decls {
		out = append(out, DeclarationOutput{
			Name:       d.Name,
			Kind:       d.Kind,
			Qualifiers: d.Qualifiers,
			Container:  d.Container,
			File:       d.Path,
			Line:       d.Line,
			Column:     d.Column,
		})
	}
	if ok, err := r.Data(out); ok {
		return err
	}

	if len(out) == 0 {
		r.Warning(fmt.Sprintf("no declarations found for %s", arg))
		return nil
	}
	renderDeclarations(r, out)
	return nil
}

func renderDeclarations(r *output.Renderer, decls []DeclarationOutput) {
	rows := make([][]string, 0, len(decls))
	for _, d := range decls {
		name := d.Name
		if d.Container != "" {
			name = d.Container + "." + d.Name
		}
		kind := d.Kind
		if d.Qualifiers != "" {
			kind = d.Qualifiers + " " + kind
		}
		rows = append(rows, []string{
			name,
			kind,
			d.File + ":" + strconv.Itoa(d.Line) + ":" + strconv.Itoa(d.Column),
		})
	}
	r.Table([]string{"Name", "Kind", "Location"}, rows)
}
