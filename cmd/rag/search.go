package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ragindex/internal/domain"
)

func NewSearchCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Return the documents nearest to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			k, _ := cmd.Flags().GetInt("number")
			if k <= 0 {
				k = a.cfg.Retriever.TopK
			}
			a.retriever.LoadArtifacts()
			results := a.rag.Query(strings.Join(args, " "), k)

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return outputResultsJSON(cmd, results)
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s\n", r.Distance, r.FilePath)
			}
			return nil
		},
	}

	cmd.Flags().IntP("number", "k", 0, "Maximum results (default from config)")
	return cmd
}

func outputResultsJSON(cmd *cobra.Command, results []domain.Result) error {
	if results == nil {
		results = []domain.Result{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
