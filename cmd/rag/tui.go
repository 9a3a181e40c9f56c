package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragindex/internal/tui"
)

func NewTUICmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Search interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			header := a.Reload()
			m := tui.New(a, a.cfg.Retriever.TopK, header)
			_, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
