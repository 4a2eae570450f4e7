package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/budgetbook/budgetbook/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			// seed from the snapshot so the first frame is not empty
			if n, err := a.accounts.Restore(ctx); err != nil {
				a.log.Warn("restore accounts", zap.Error(err))
			} else if n > 0 {
				a.log.Debug("restored accounts", zap.Int("count", n))
			}
			if _, err := a.categories.Restore(ctx); err != nil {
				a.log.Warn("restore categories", zap.Error(err))
			}

			app := tui.New(ctx, tui.Services{
				Dashboard:   a.dashboard,
				Ledger:      a.ledger,
				Accounts:    a.accounts,
				Categories:  a.categories,
				Assistant:   a.assistant,
				Maintenance: a.maintenance,
			}, a.cfg.Location())
			_, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}
