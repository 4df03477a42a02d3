package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/quill-lang/quill/pkg/frontend"
	"github.com/spf13/cobra"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Re-check source files when they change",
		Long: `Check the given files and directories, then check them again whenever a
matching file is written, created or removed.

Bursts of changes are coalesced: a check runs once no event has arrived for
the debounce interval (watch.debounce in quill.yaml). Stop with Ctrl+C.`,
		Example: `  # Watch the project
  quill watch .

  # Wait longer for editors that save in several steps
  quill watch --debounce 500ms src`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "Quiet period before re-checking (overrides watch.debounce)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	env := GetEnv(cmd)
	if len(args) == 0 {
		return errors.New("no input paths")
	}

	debounce := env.Config.Watch.Debounce
	if opts.Debounce > 0 {
		debounce = opts.Debounce
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := newCheckWatcher(args, env.Config.Include)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	check := func() {
		units, err := parseInputs(cmd, env, args, "")
		if err != nil {
			env.Renderer.Error(err.Error())
			return
		}
		errs := reportCheck(env.Renderer, units)
		env.Logger.Debug("watch check finished", "files", len(units), "errors", errs)
	}

	check()
	env.Renderer.Muted(fmt.Sprintf("watching %s (Ctrl+C to stop)", strings.Join(args, ", ")))
	return w.Loop(ctx, debounce, func(changed []string) {
		env.Logger.Info("change detected", "files", changed)
		check()
	})
}

// checkWatcher follows the files that a set of command-line paths expands
// to. Directories are watched recursively; single files are watched through
// their parent directory.
type checkWatcher struct {
	watcher *fsnotify.Watcher
	include []string
	dirs    []string
	files   map[string]bool
}

func newCheckWatcher(args, include []string) (*checkWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &checkWatcher{watcher: watcher, include: include, files: make(map[string]bool)}

	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			_ = watcher.Close()
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			w.files[abs] = true
			if err := watcher.Add(filepath.Dir(abs)); err != nil {
				_ = watcher.Close()
				return nil, fmt.Errorf("failed to watch %s: %w", arg, err)
			}
			continue
		}
		w.dirs = append(w.dirs, abs)
		if err := w.addTree(abs); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", arg, err)
		}
	}
	return w, nil
}

// addTree adds dir and its subdirectories, skipping hidden ones.
func (w *checkWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

// relevant reports whether a change to name affects the watched inputs.
func (w *checkWatcher) relevant(name string) bool {
	if w.files[name] {
		return true
	}
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, name)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if frontend.Match(w.include, filepath.ToSlash(rel)) {
			return true
		}
	}
	return false
}

// Loop delivers coalesced changes to onChange until ctx is cancelled. Each
// call receives the sorted, distinct paths changed since the previous one.
func (w *checkWatcher) Loop(ctx context.Context, debounce time.Duration, onChange func(changed []string)) error {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && w.underDirs(event.Name) {
					_ = w.addTree(event.Name)
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			slices.Sort(changed)
			onChange(changed)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *checkWatcher) underDirs(p string) bool {
	for _, dir := range w.dirs {
		if rel, err := filepath.Rel(dir, p); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// Close stops the watcher.
func (w *checkWatcher) Close() error {
	return w.watcher.Close()
}
