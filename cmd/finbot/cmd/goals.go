package cmd

import (
	"github.com/spf13/cobra"

	"finbot/internal/cli"
)

// goalsCmd represents the goals command.
var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "List savings goals and their default durations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rs, err := loadRules(cfg)
		if err != nil {
			return err
		}
		return cli.RenderGoals(cmd.OutOrStdout(), rs)
	},
}
