package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"finbot/internal/cli"
	"finbot/internal/core"
	apphttp "finbot/internal/http"
	"finbot/internal/ingest"
	applog "finbot/internal/log"
	"finbot/internal/services"
)

var (
	budgetFlag     string
	goalFlag       string
	goalAmountFlag string
	goalMonthsFlag int
	sheetFlag      bool
	jsonFlag       bool
)

// analyzeCmd represents the analyze command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Analyze expense files against a budget",
	Long: `Analyze one or more expense exports against a monthly budget.

Each file needs Date, Category and Amount columns. Rows that cannot be
parsed are skipped and counted. With more than one month of data the
analysis uses the monthly average.

Example:
  finbot analyze --budget 20000 jan.csv feb.csv
  finbot analyze --budget 20000 --goal "Emergency Fund" --goal-amount 60000 --goal-months 8 jan.xlsx
  finbot analyze --budget 20000 --sheet --json`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&budgetFlag, "budget", "", "monthly budget (required)")
	analyzeCmd.Flags().StringVar(&goalFlag, "goal", "", "savings goal label, e.g. Gadget")
	analyzeCmd.Flags().StringVar(&goalAmountFlag, "goal-amount", "", "savings goal target amount")
	analyzeCmd.Flags().IntVar(&goalMonthsFlag, "goal-months", 0, "months to reach the goal (default from the goal table)")
	analyzeCmd.Flags().BoolVar(&sheetFlag, "sheet", false, "also read the configured Google Sheet")
	analyzeCmd.Flags().BoolVar(&jsonFlag, "json", false, "print the result as JSON")
	_ = analyzeCmd.MarkFlagRequired("budget")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := applog.FromContext(ctx)

	if len(args) == 0 && !sheetFlag {
		return errors.New("no input: pass expense files or --sheet")
	}

	budget, err := core.ParseDecimal(budgetFlag)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", core.ErrInvalidBudget, budgetFlag)
	}
	goal := services.GoalRequest{Label: goalFlag, Months: goalMonthsFlag}
	if goalAmountFlag != "" {
		goal.Target, err = core.ParseDecimal(goalAmountFlag)
		if err != nil {
			return fmt.Errorf("%w: goal amount %q is not a number", core.ErrInvalidGoal, goalAmountFlag)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rs, err := loadRules(cfg)
	if err != nil {
		return err
	}

	loaded, err := loadInput(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetRange,
		cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile, args)
	if err != nil {
		return err
	}

	opts := []services.Option{services.WithExplainTimeout(cfg.ExplainTimeout)}
	if explainer := cli.NewExplainer(cfg, nil, logger); explainer != nil {
		opts = append(opts, services.WithExplainer(explainer))
	}
	dbPath := ""
	if cfg.ArchiveDurable() {
		dbPath = cfg.SQLiteDBPath
	}
	repo, err := cli.OpenArchive(logger, dbPath)
	if err != nil {
		return err
	}
	if repo != nil {
		defer repo.Close()
		opts = append(opts, services.WithRecorder(services.NewReportService(repo, nil)))
	}

	source := ""
	if len(loaded.Sources) > 0 {
		source = loaded.Sources[0]
	}
	res, err := services.NewAnalyzer(rs, opts...).Analyze(ctx, services.Request{
		Transactions: loaded.Transactions,
		Budget:       budget,
		Goal:         goal,
		Source:       source,
		DroppedRows:  loaded.Dropped,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonFlag {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(apphttp.NewAnalyzeResponse(loaded, res))
	}
	return cli.RenderAnalysis(out, loaded, res, rs.Currency())
}

// loadInput reads the files and, when --sheet is set, the spreadsheet,
// merging them in that order.
func loadInput(ctx context.Context, spreadsheetID, rangeName, credsJSON, credsFile string, paths []string) (ingest.Result, error) {
	var parts []ingest.Result
	if len(paths) > 0 {
		res, err := ingest.LoadFiles(ctx, paths...)
		if err != nil {
			return ingest.Result{}, err
		}
		parts = append(parts, res)
	}
	if sheetFlag {
		src, err := ingest.NewSheetsSource(ctx, spreadsheetID, rangeName, credsJSON, credsFile)
		if err != nil {
			return ingest.Result{}, err
		}
		res, err := src.Load(ctx)
		if err != nil {
			return ingest.Result{}, err
		}
		parts = append(parts, res)
	}
	return ingest.Merge(parts...), nil
}
