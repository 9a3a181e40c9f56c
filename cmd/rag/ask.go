package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewAskCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the indexed documents",
		Long:  `Retrieves the nearest documents and answers with the configured language model, or with an extractive summary when no model is configured.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			k, _ := cmd.Flags().GetInt("number")
			if k <= 0 {
				k = a.cfg.Retriever.TopK
			}
			a.retriever.LoadArtifacts()
			ans, err := a.rag.Ask(cmd.Context(), strings.Join(args, " "), k)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				sources := make([]string, 0, len(ans.Sources))
				for _, s := range ans.Sources {
					sources = append(sources, s.FilePath)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"answer":    ans.Text,
					"generated": ans.Generated,
					"sources":   sources,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
			if len(ans.Sources) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
				for _, s := range ans.Sources {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", s.FilePath)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntP("number", "k", 0, "Documents to retrieve (default from config)")
	return cmd
}
