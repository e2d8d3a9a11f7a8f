// Package watcher triggers catalog refreshes when run files change. It is
// strictly an outer surface: filesystem events and a polling safety net both
// reduce to calls of the refresh callback, and the catalog's own change
// ledger decides what actually gets re-read.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// Options configures the watcher.
type Options struct {
	// Debounce is the settle window for event bursts. Default: 500ms.
	Debounce time.Duration
	// PollInterval is the safety-net refresh period for changes fsnotify
	// misses (network filesystems, editors that bypass the watched dirs).
	// Zero disables polling.
	PollInterval time.Duration
	// Logger receives watcher diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	if o.Debounce == 0 {
		o.Debounce = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Watcher watches the directories under a set of glob patterns and calls a
// refresh callback after each settled burst of changes.
type Watcher struct {
	roots   []string
	opts    Options
	refresh func() error
}

// New creates a watcher for the given glob patterns. The refresh callback is
// invoked from the Run goroutine, never concurrently with itself.
func New(patterns []string, refresh func() error, opts Options) (*Watcher, error) {
	roots := Roots(patterns)
	if len(roots) == 0 {
		return nil, fmt.Errorf("no watchable directories in patterns %v", patterns)
	}
	return &Watcher{
		roots:   roots,
		opts:    opts.WithDefaults(),
		refresh: refresh,
	}, nil
}

// Roots returns the static directory prefix of each pattern, deduplicated.
// The part before the first glob metacharacter is a plain directory that can
// be handed to fsnotify.
func Roots(patterns []string) []string {
	seen := make(map[string]struct{})
	var roots []string
	for _, p := range patterns {
		base, _ := doublestar.SplitPattern(p)
		if base == "" {
			base = "."
		}
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		roots = append(roots, base)
	}
	return roots
}

// Run watches until the context is cancelled. Refresh errors are logged and
// watching continues: a malformed run file must not kill the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	watching := 0
	for _, root := range w.roots {
		if err := fsw.Add(root); err != nil {
			if os.IsNotExist(err) {
				w.opts.Logger.Warn("watch root does not exist, relying on polling",
					slog.String("dir", root))
				continue
			}
			return fmt.Errorf("watch %s: %w", root, err)
		}
		watching++
	}
	if watching == 0 && w.opts.PollInterval == 0 {
		return fmt.Errorf("no directories could be watched and polling is disabled")
	}

	deb := NewDebouncer(w.opts.Debounce)
	defer deb.Stop()

	g, ctx := errgroup.WithContext(ctx)

	// Forward raw filesystem events into the debouncer.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-fsw.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					deb.Add()
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return nil
				}
				w.opts.Logger.Warn("filesystem watcher error",
					slog.String("error", err.Error()))
			}
		}
	})

	// Consume settled bursts and the polling ticker.
	g.Go(func() error {
		var tick <-chan time.Time
		if w.opts.PollInterval > 0 {
			ticker := time.NewTicker(w.opts.PollInterval)
			defer ticker.Stop()
			tick = ticker.C
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case n := <-deb.Output():
				w.opts.Logger.Debug("refreshing after change burst",
					slog.Int("events", n))
				w.doRefresh()
			case <-tick:
				w.doRefresh()
			}
		}
	})

	err = g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

func (w *Watcher) doRefresh() {
	if err := w.refresh(); err != nil {
		w.opts.Logger.Warn("refresh failed",
			slog.String("error", err.Error()))
	}
}
