// Package cmd provides CLI commands for finbot.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finbot/internal/cli"
	"finbot/internal/config"
	applog "finbot/internal/log"
	"finbot/internal/rules"
)

var (
	envFile   string
	rulesFile string
	debug     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "finbot",
	Short: "Analyze spending against a monthly budget",
	Long: `finbot reads expense exports (CSV, XLSX or a Google Sheet), compares
spending with a monthly budget, flags categories over their limits, checks
whether a savings goal is reachable, and prints an action plan.

Example:
  finbot analyze --budget 20000 jan.csv feb.xlsx
  finbot analyze --budget 20000 --goal Gadget --goal-amount 20000 jan.csv
  finbot goals
  finbot reports --limit 10`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "warn"
		}
		if debug {
			level = "debug"
		}
		cfg := applog.DefaultConfig()
		cfg.Level = applog.ParseLevel(level)
		cfg.Output = cmd.ErrOrStderr()
		applog.SetDefault(applog.New(cfg))

		if err := config.LoadEnvFile(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "environment file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rules YAML file (default is $FINBOT_RULES_FILE or the built-in tables)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(reportsCmd)
}

// loadConfig reads and validates the environment, with --rules taking
// precedence over FINBOT_RULES_FILE.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if rulesFile != "" {
		cfg.RulesFile = rulesFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRules(cfg *config.Config) (*rules.Rules, error) {
	return cli.LoadRules(applog.FromContext(context.Background()), cfg.RulesFile)
}
