package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/quill-lang/quill/internal/cli/output"
	"github.com/quill-lang/quill/pkg/ast"
	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/quill-lang/quill/pkg/token"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "quill> "
	replContPrompt = "  ...> "
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Parse input interactively",
		Long: `Start an interactive session that parses each input and prints its
syntax tree and diagnostics.

Input is parsed as statements and declarations, or as one expression after
.expr. A line ending in ':' '{' '(' '[' ',' or '\' continues on the next
line; a blank line ends a continued input. Type .help for commands.`,
		Example: `  quill repl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd)
		},
	}
	return cmd
}

func runRepl(cmd *cobra.Command) error {
	env := GetEnv(cmd)

	historyFile := ""
	if env.Config.IndexPath != "" {
		dir := filepath.Dir(env.Config.IndexPath)
		if err := os.MkdirAll(dir, 0o750); err == nil {
			historyFile = filepath.Join(dir, "repl_history")
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Quill REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	s := newReplSession(env.Renderer, env.Config.ParserOptions())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if s.feed(line) {
			break
		}
		if s.pending() {
			rl.SetPrompt(replContPrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
	return nil
}

// replSession holds the state of an interactive session apart from the
// terminal, so it can be driven line by line.
type replSession struct {
	r       *output.Renderer
	opts    parser.Options
	tokens  bool
	expr    bool
	buf     strings.Builder
	inBlock bool
}

func newReplSession(r *output.Renderer, opts parser.Options) *replSession {
	return &replSession{r: r, opts: opts}
}

func (s *replSession) reset() {
	s.buf.Reset()
	s.inBlock = false
}

func (s *replSession) pending() bool { return s.inBlock }

// feed consumes one input line and reports whether the session should end.
func (s *replSession) feed(line string) bool {
	trimmed := strings.TrimSpace(line)

	if s.inBlock {
		if trimmed == "" {
			s.eval(s.buf.String())
			s.reset()
			return false
		}
		s.buf.WriteString(line)
		s.buf.WriteByte('\n')
		return false
	}

	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, ".") {
		return s.command(trimmed)
	}

	if continues(trimmed) {
		s.inBlock = true
		s.buf.WriteString(strings.TrimSuffix(line, "\\"))
		s.buf.WriteByte('\n')
		return false
	}
	s.eval(line)
	return false
}

func continues(line string) bool {
	switch line[len(line)-1] {
	case ':', '{', '(', '[', ',', '\\':
		return true
	}
	return false
}

func (s *replSession) command(line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printReplHelp(s.r.Writer())
	case ".tokens":
		s.tokens = !s.tokens
		s.r.Muted(fmt.Sprintf("token display %s", onOff(s.tokens)))
	case ".expr":
		s.expr = !s.expr
		s.r.Muted(fmt.Sprintf("expression mode %s", onOff(s.expr)))
	case ".clear":
		s.r.Printf("\033[H\033[2J")
	default:
		s.r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", parts[0]))
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (s *replSession) eval(text string) {
	src := source.NewString("<repl>", text)
	if s.tokens {
		lx := lexer.New(src, nil, s.opts.Lexer)
		lx.All()
		rows := [][]string{}
		for _, t := range tokenOutputs(lx, false) {
			if t.Kind == token.EOF.String() {
				continue
			}
			rows = append(rows, []string{t.Kind, t.Text})
		}
		s.r.Table([]string{"Kind", "Text"}, rows)
	}

	if s.expr {
		_ = renderExpr(s.r, text, s.opts)
		return
	}

	u := frontend.Parse(src, s.opts)
	for _, item := range u.File.Items {
		s.r.Printf("%s", ast.Dump(item, u.Strings()).Format())
	}
	printDiagnostics(s.r, fromUnits([]*frontend.Unit{u}))
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tokens         Toggle printing the tokens of each input
  .expr           Toggle parsing input as a single expression
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - End a line with ':' or an open bracket to continue; a blank line ends it
  - Use arrow keys to navigate history
  - Tab completes commands and keywords
`
	_, _ = fmt.Fprintln(w, help)
}

// newReplCompleter completes dot-commands and keywords.
func newReplCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".tokens"),
		readline.PcItem(".expr"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}
	for _, b := range token.Builtins {
		if b.Pure {
			items = append(items, readline.PcItem(b.Text))
		}
	}
	return readline.NewPrefixCompleter(items...)
}
