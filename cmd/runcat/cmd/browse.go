package cmd

import (
	"github.com/spf13/cobra"

	"github.com/runcat-io/runcat/internal/output"
	"github.com/runcat-io/runcat/internal/ui"
)

// newBrowseCmd creates the browse command: an interactive run table.
func newBrowseCmd() *cobra.Command {
	var paths []string
	var encoding string
	var plain bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in an interactive table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := openCatalog(paths, encoding)
			if err != nil {
				return err
			}
			if err := cat.Refresh(); err != nil {
				return err
			}
			entries, err := cat.Entries()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if plain || !ui.IsTTY(stdout) {
				output.New(stdout).Entries(entries)
				return nil
			}
			return ui.Browse(entries, stdout)
		},
	}

	cmd.Flags().StringArrayVar(&paths, "path", nil, "Run file glob pattern (repeatable, overrides config)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Run file encoding: jsonl or msgpack (overrides config)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print a plain listing instead of the interactive table")

	return cmd
}
