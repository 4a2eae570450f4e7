package main

import (
	"github.com/spf13/cobra"

	"github.com/budgetbook/budgetbook/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg
			rows := [][]string{
				{"file", config.Path()},
				{"api.base_url", c.API.BaseURL},
				{"api.timeout", c.API.Timeout.String()},
				{"api.secure_connection", boolString(c.API.SecureConnection)},
				{"cache.path", c.Cache.Path},
				{"cache.enabled", boolString(c.Cache.Enabled)},
				{"ui.timezone", c.UI.Timezone},
				{"ui.week_start", c.UI.WeekStart},
				{"log.level", c.Log.Level},
				{"log.json", boolString(c.Log.JSON)},
				{"log.file", c.Log.File},
				{"logged in", boolString(a.client.Auth.IsAuthenticated())},
			}
			a.table([]string{"KEY", "VALUE"}, rows)
			return nil
		},
	}
	set := &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Change one setting",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Set(args[0], args[1]); err != nil {
				return err
			}
			a.printf("%s = %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.AddCommand(show, set)
	return cmd
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
