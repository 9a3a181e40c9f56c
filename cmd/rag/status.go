package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func NewStatusCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the published snapshot and whether it loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			a.retriever.LoadArtifacts()
			info := a.retriever.Info()
			versions, err := a.store.Versions()
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"state":     info.State.String(),
					"version":   info.Version,
					"documents": info.Documents,
					"dimension": info.Dimension,
					"snapshots": len(versions),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state:     %s\n", info.State)
			fmt.Fprintf(out, "corpus:    %s\n", a.cfg.Corpus.Root)
			fmt.Fprintf(out, "store:     %s (%d snapshots)\n", a.store.Dir(), len(versions))
			if info.Version != "" {
				fmt.Fprintf(out, "version:   %s\n", info.Version)
			}
			if info.Documents > 0 {
				fmt.Fprintf(out, "documents: %d\n", info.Documents)
				fmt.Fprintf(out, "dimension: %d\n", info.Dimension)
			}
			return nil
		},
	}
}
