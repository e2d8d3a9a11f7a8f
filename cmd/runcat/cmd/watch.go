package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/runcat-io/runcat/internal/output"
	"github.com/runcat-io/runcat/internal/watcher"
)

// newWatchCmd creates the watch command: continuous refresh on file changes.
func newWatchCmd() *cobra.Command {
	var paths []string
	var encoding string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch run files and refresh the catalog continuously",
		Long: `Watch keeps the catalog current: filesystem events on the directories
under the configured patterns trigger debounced refreshes, with a periodic
poll as a safety net. Only one watcher may run per config directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// One watcher per config directory; concurrent refreshes of the
			// same catalog would race on the change ledger.
			lock := flock.New(filepath.Join(configDir, ".runcat.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire watch lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another runcat watch is already running for %s", configDir)
			}
			defer func() { _ = lock.Unlock() }()

			cat, err := openCatalog(paths, encoding)
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			if err := cat.Refresh(); err != nil {
				return err
			}
			n, err := cat.Len()
			if err != nil {
				return err
			}
			out.Successf("indexed %d runs, watching for changes (ctrl+c to stop)", n)

			w, err := watcher.New(cat.Paths(), cat.Refresh, watcher.Options{
				Debounce:     cfg.Watch.DebounceDuration(),
				PollInterval: cfg.Watch.PollIntervalDuration(),
				Logger:       slog.Default(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringArrayVar(&paths, "path", nil, "Run file glob pattern (repeatable, overrides config)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Run file encoding: jsonl or msgpack (overrides config)")

	return cmd
}
