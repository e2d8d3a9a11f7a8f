package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	rcerrors "github.com/runcat-io/runcat/internal/errors"
	"github.com/runcat-io/runcat/internal/output"
	"github.com/runcat-io/runcat/internal/query"
)

// newSearchCmd creates the search command.
func newSearchCmd() *cobra.Command {
	var paths []string
	var encoding string

	cmd := &cobra.Command{
		Use:   "search <json-query>",
		Short: "Search the catalog with a Mongo-style query",
		Long: `Search scans the run files and prints the runs whose start document
matches the query. Queries use Mongo-style operators over start document
fields, plus $text for full-text matching.

Examples:
  runcat search '{"plan_name": "scan"}'
  runcat search '{"num_points": {"$gt": 100}}'
  runcat search '{"$text": {"$search": "tomography"}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var q query.Query
			if err := json.Unmarshal([]byte(args[0]), &q); err != nil {
				return rcerrors.Wrap(rcerrors.ErrCodeQueryInvalid, err).
					WithDetail("query", args[0]).
					WithSuggestion("queries are JSON documents, e.g. '{\"plan_name\": \"scan\"}'")
			}

			cat, err := openCatalog(paths, encoding)
			if err != nil {
				return err
			}
			results, err := cat.Search(q)
			if err != nil {
				return err
			}
			if err := results.Refresh(); err != nil {
				return err
			}

			entries, err := results.Entries()
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())
			if len(entries) == 0 {
				out.Status("", "no matching runs")
				return nil
			}
			out.Entries(entries)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&paths, "path", nil, "Run file glob pattern (repeatable, overrides config)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Run file encoding: jsonl or msgpack (overrides config)")

	return cmd
}
