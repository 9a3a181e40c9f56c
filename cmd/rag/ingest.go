package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func NewIngestCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the index from the corpus directory",
		Long:  `Walks the configured corpus root, fits the vectorizer, builds the index and publishes a new snapshot. An empty corpus leaves the current snapshot untouched.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			sum, err := a.ingester.Ingest()
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"documents": sum.Documents,
					"skipped":   sum.Skipped,
					"version":   sum.Version,
				})
			}
			if sum.Version == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "No documents found under %s; index unchanged.\n", a.cfg.Corpus.Root)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents (%d skipped) into snapshot %s\n", sum.Documents, sum.Skipped, sum.Version)
			return nil
		},
	}
}
