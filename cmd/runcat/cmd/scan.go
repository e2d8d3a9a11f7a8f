package cmd

import (
	"github.com/spf13/cobra"

	"github.com/runcat-io/runcat/internal/output"
)

// newScanCmd creates the scan command: one refresh cycle plus a listing.
func newScanCmd() *cobra.Command {
	var paths []string
	var encoding string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan run files and list the catalog",
		Long: `Scan expands the configured glob patterns, indexes new or changed
run files, and prints the resulting catalog.`,
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

			out := output.New(cmd.OutOrStdout())
			out.Successf("indexed %d runs", len(entries))
			if !quiet && len(entries) > 0 {
				out.Newline()
				out.Entries(entries)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&paths, "path", nil, "Run file glob pattern (repeatable, overrides config)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Run file encoding: jsonl or msgpack (overrides config)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the summary line")

	return cmd
}
