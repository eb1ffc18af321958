package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"finbot/internal/cli"
	"finbot/internal/core"
	applog "finbot/internal/log"
	"finbot/internal/services"
)

var reportsLimit int

// reportsCmd represents the reports command.
var reportsCmd = &cobra.Command{
	Use:   "reports [id]",
	Short: "List archived analysis reports",
	Long: `List the most recent analysis reports from the SQLite archive, or show
one report by ID.

Requires SQLITE_DB_PATH.

Examples:
  finbot reports --limit 10
  finbot reports 3f0c2a1e-8d7b-4c55-9a51-2f7d0e6b9c11`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReports,
}

func init() {
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 20, "number of reports to show")
}

func runReports(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.ArchiveDurable() {
		return errors.New("report archive is not configured (set SQLITE_DB_PATH)")
	}
	rs, err := loadRules(cfg)
	if err != nil {
		return err
	}

	repo, err := cli.OpenArchive(applog.FromContext(ctx), cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc := services.NewReportService(repo, nil)
	var reports []core.Report
	if len(args) == 1 {
		rep, err := svc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		reports = []core.Report{rep}
	} else {
		reports, err = svc.List(ctx, reportsLimit)
		if err != nil {
			return err
		}
	}
	return cli.RenderReports(cmd.OutOrStdout(), reports, rs.Currency())
}
