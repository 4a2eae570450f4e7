package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the offline snapshot",
	}
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Empty the offline snapshot; server data is untouched",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.maintenance == nil {
				return errors.New("offline cache is disabled")
			}
			if err := a.maintenance.Reset(cmd.Context()); err != nil {
				return err
			}
			a.printf("offline cache cleared (%s)\n", a.cfg.Cache.Path)
			return nil
		},
	}
	cmd.AddCommand(reset)
	return cmd
}
