// Package cmd provides the CLI commands for runcat.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/runcat-io/runcat/internal/config"
	rcerrors "github.com/runcat-io/runcat/internal/errors"
	"github.com/runcat-io/runcat/internal/logging"
	"github.com/runcat-io/runcat/pkg/catalog"
	"github.com/runcat-io/runcat/pkg/version"
)

var (
	debugMode bool
	configDir string

	cfg            *config.Config
	loggingCleanup func()
)

// NewRootCmd creates the root command for the runcat CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runcat",
		Short: "Incremental catalog of experiment run files",
		Long: `runcat indexes experiment runs recorded as append-only document
streams (JSONL or msgpack) and makes them searchable without a database.

Run files are matched by glob patterns from .runcat.yaml or --path flags;
each refresh re-reads only files whose modification time changed.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("runcat version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&configDir, "dir", ".", "Directory containing .runcat.yaml")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRunE = teardownLogging

	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configDir)
	if err != nil {
		return err
	}
	cfg = loaded

	lc := logging.Config{
		Level:     cfg.Logging.Level,
		FilePath:  cfg.Logging.File,
		MaxSizeMB: 10,
		MaxFiles:  5,
	}
	if debugMode {
		lc.Level = "debug"
		if lc.FilePath == "" {
			lc.FilePath = logging.DefaultLogPath()
		}
	}
	logger, cleanup, err := logging.Setup(lc)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// catalogPatterns resolves the run file patterns: --path flags win over the
// config file.
func catalogPatterns(flagPaths []string) ([]string, error) {
	paths := flagPaths
	if len(paths) == 0 {
		paths = cfg.Catalog.Paths
	}
	if len(paths) == 0 {
		return nil, rcerrors.New(rcerrors.ErrCodeConfigInvalid,
			"no catalog paths configured", nil).
			WithSuggestion("set catalog.paths in .runcat.yaml or pass --path")
	}
	return paths, nil
}

// openCatalog builds the catalog from config plus flag overrides.
func openCatalog(flagPaths []string, flagEncoding string) (*catalog.Catalog, error) {
	paths, err := catalogPatterns(flagPaths)
	if err != nil {
		return nil, err
	}
	encoding := cfg.Catalog.Encoding
	if flagEncoding != "" {
		encoding = flagEncoding
	}
	return catalog.New(catalog.Encoding(encoding), paths, &catalog.Options{
		Name:   cfg.Catalog.Name,
		Logger: slog.Default(),
	})
}
