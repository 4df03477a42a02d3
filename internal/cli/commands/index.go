package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/quill-lang/quill/internal/cli/output"
	"github.com/quill-lang/quill/internal/state"
	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/spf13/cobra"
)

// IndexOptions holds options for the index command.
type IndexOptions struct {
	Prune  bool
	Status bool
}

// IndexOutput is the JSON/YAML output of index.
type IndexOutput struct {
	Index        string `json:"index" yaml:"index"`
	RunID        string `json:"run_id" yaml:"run_id"`
	Files        int    `json:"files" yaml:"files"`
	Changed      int    `json:"changed" yaml:"changed"`
	Skipped      int    `json:"skipped" yaml:"skipped"`
	Removed      int    `json:"removed" yaml:"removed"`
	Declarations int    `json:"declarations" yaml:"declarations"`
	Errors       int    `json:"errors" yaml:"errors"`
}

// RunOutput is the JSON/YAML form of an index run.
type RunOutput struct {
	ID           string     `json:"id" yaml:"id"`
	StartedAt    time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Files        int        `json:"files" yaml:"files"`
	Declarations int        `json:"declarations" yaml:"declarations"`
	Error        string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	opts := &IndexOptions{}
	cmd := &cobra.Command{
		Use:   "index [path...]",
		Short: "Update the declaration index",
		Long: `Record the declarations of source files in the project index.

The index is a SQLite database (index_path in quill.yaml, default
.quill/index.db). Files whose content hash is unchanged since the last run
are skipped. The language server uses the index for cross-file hover and
go-to-definition.`,
		Example: `  # Index the project
  quill index .

  # Index and drop files that no longer exist
  quill index --prune .

  # Show the last run
  quill index --status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Remove indexed files not among the given paths")
	cmd.Flags().BoolVar(&opts.Status, "status", false, "Show the latest index run instead of indexing")

	return cmd
}

// openIndex opens and migrates the index database of the configuration.
func openIndex(env *Env) (*state.SQLiteStore, error) {
	store := state.NewSQLiteStore(env.Logger)
	if err := store.Open(env.Config.IndexPath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func runIndex(cmd *cobra.Command, args []string, opts *IndexOptions) error {
	env := GetEnv(cmd)
	r := env.Renderer

	if !opts.Status && len(args) == 0 {
		return errors.New("no input paths")
	}

	store, err := openIndex(env)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if opts.Status {
		return renderRun(cmd, r, store, env.Config.IndexPath)
	}

	paths, err := frontend.Expand(args, env.Config.Include)
	if err != nil {
		return err
	}
	res, err := state.NewIndexer(store, env.Logger).Index(cmd.Context(), paths, opts.Prune, env.FrontendOptions())
	if err != nil {
		return err
	}

	out := IndexOutput{
		Index:        env.Config.IndexPath,
		RunID:        res.RunID,
		Files:        res.Files,
		Changed:      res.Changed,
		Skipped:      res.Skipped,
		Removed:      res.Removed,
		Declarations: res.Declarations,
		Errors:       res.Errors,
	}
	if ok, err := r.Data(out); ok {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader("Index", 2))
		r.Println("")
		r.Println(output.FormatKeyValue("Index", out.Index))
		r.Println(output.FormatKeyValue("Files", out.Files))
		r.Println(output.FormatKeyValue("Changed", out.Changed))
		r.Println(output.FormatKeyValue("Skipped", out.Skipped))
		r.Println(output.FormatKeyValue("Removed", out.Removed))
		r.Println(output.FormatKeyValue("Declarations", out.Declarations))
		r.Println(output.FormatKeyValue("Errors", out.Errors))
		return nil
	}
	r.Success(fmt.Sprintf("indexed %d of %d %s (%d unchanged, %d removed), %d declarations",
		out.Changed, out.Files, plural(out.Files, "file", "files"), out.Skipped, out.Removed, out.Declarations))
	if out.Errors > 0 {
		r.Warning(fmt.Sprintf("%d %s in indexed files; run quill check for details", out.Errors, plural(out.Errors, "error", "errors")))
	}
	return nil
}

func renderRun(cmd *cobra.Command, r *output.Renderer, store state.Store, path string) error {
	run, err := store.GetLatestRun(cmd.Context())
	if err != nil {
		return err
	}
	if run == nil {
		r.Warning("index has no runs")
		return nil
	}

	out := RunOutput{
		ID:           run.ID,
		StartedAt:    run.StartedAt,
		CompletedAt:  run.CompletedAt,
		Files:        run.Files,
		Declarations: run.Declarations,
		Error:        run.Error,
	}
	if ok, err := r.Data(out); ok {
		return err
	}

	status := "running"
	if out.CompletedAt != nil {
		status = out.CompletedAt.Format(time.RFC3339)
	}
	if out.Error != "" {
		status = "failed: " + out.Error
	}
	r.Table([]string{"Run", "Started", "Completed", "Files", "Declarations"}, [][]string{{
		out.ID,
		out.StartedAt.Format(time.RFC3339),
		status,
		strconv.Itoa(out.Files),
		strconv.Itoa(out.Declarations),
	}})
	r.Muted(path)
	return nil
}
