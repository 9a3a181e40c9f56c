package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	var a *app

	rootCmd := &cobra.Command{
		Use:           "rag",
		Short:         "Index local documents and answer questions from them",
		Long:          `Builds a TF-IDF flat index over a document directory and serves top-k retrieval, optionally answered by a language model.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			level, _ := cmd.Flags().GetString("log-level")
			cfg, err := loadConfig(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err = newApp(cfg, level)
			return err
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	get := func() *app { return a }
	rootCmd.AddCommand(
		NewIngestCmd(get),
		NewSearchCmd(get),
		NewAskCmd(get),
		NewStatusCmd(get),
		NewTUICmd(get),
	)
	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to YAML config file (default ./config.yaml or ~/.config/rag/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Override log level (debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}
