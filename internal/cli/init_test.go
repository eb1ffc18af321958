package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"finbot/internal/cache"
	"finbot/internal/config"
	"finbot/internal/core"
	"finbot/internal/explain"
	"finbot/internal/ingest"
	applog "finbot/internal/log"
	"finbot/internal/rules"
	"finbot/internal/services"
)

func quietLogger() *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Output = &bytes.Buffer{}
	return applog.New(cfg)
}

func TestLoadRules(t *testing.T) {
	logger := quietLogger()

	r, err := LoadRules(logger, "")
	if err != nil || r == nil {
		t.Fatalf("default rules: %v", err)
	}
	if _, ok := r.Goal("Gadget"); !ok {
		t.Error("default rules should include the Gadget goal")
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("currency: \"$\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	r, err = LoadRules(logger, path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if r.Currency() != "$" {
		t.Errorf("currency = %q", r.Currency())
	}

	if _, err := LoadRules(logger, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing rules file")
	}
}

func TestOpenArchive(t *testing.T) {
	logger := quietLogger()

	repo, err := OpenArchive(logger, "")
	if err != nil || repo != nil {
		t.Fatalf("empty path should disable the archive, got %v, %v", repo, err)
	}

	repo, err = OpenArchive(logger, filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer repo.Close()
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewExplainer(t *testing.T) {
	logger := quietLogger()

	cfg := &config.Config{ExplainCacheSize: 8}
	if p := NewExplainer(cfg, nil, logger); p != nil {
		t.Fatalf("expected nil provider without an API key, got %T", p)
	}

	manager := cache.NewManager(logger)
	cfg.AnthropicAPIKey = "sk-test"
	p := NewExplainer(cfg, manager, logger)
	if _, ok := p.(*explain.Cached); !ok {
		t.Fatalf("expected cached provider, got %T", p)
	}
	if n := manager.CleanAll(); n != 0 {
		t.Errorf("fresh cache should have nothing to clean, got %d", n)
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", applog.ComponentApp)
	if logger.Component() != applog.ComponentApp {
		t.Errorf("component = %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}

func TestRenderAnalysis(t *testing.T) {
	txs := []core.Transaction{
		{Date: core.NewDate(2026, 1, 5), Category: "Food", Amount: decimal.NewFromInt(5000)},
		{Date: core.NewDate(2026, 1, 1), Category: "Rent", Amount: decimal.NewFromInt(8000)},
	}
	analyzer := services.NewAnalyzer(rules.Default())
	res, err := analyzer.Analyze(context.Background(), services.Request{
		Transactions: txs,
		Budget:       decimal.NewFromInt(20000),
		Goal:         services.GoalRequest{Label: "Gadget", Target: decimal.NewFromInt(40000)},
	})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	in := ingest.Result{Transactions: txs, Rows: 3, Dropped: 1}
	if err := RenderAnalysis(&out, in, res, "₹"); err != nil {
		t.Fatalf("RenderAnalysis: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Months analyzed: Jan 2026",
		"Total spent: ₹13000.00",
		"Remaining: ₹7000.00",
		"Skipped rows: 1 of 3",
		"  - Rent: ₹8000.00 (40.0% > 35%)",
		"  - Food: ₹5000.00 (25.0%)",
		"Feasible: no (short by ₹3000.00)",
		"  1. Reduce Rent spending by approximately ₹1000.00",
		"Explanation (fallback):",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRenderAnalysisOverBudget(t *testing.T) {
	txs := []core.Transaction{
		{Date: core.NewDate(2026, 3, 2), Category: "Rent", Amount: decimal.NewFromInt(12000)},
	}
	res, err := services.NewAnalyzer(rules.Default()).Analyze(context.Background(), services.Request{
		Transactions: txs,
		Budget:       decimal.NewFromInt(10000),
	})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := RenderAnalysis(&out, ingest.Result{Transactions: txs, Rows: 1}, res, "₹"); err != nil {
		t.Fatal(err)
	}
	if want := "Remaining: ₹-2000.00 (over budget by ₹2000.00)"; !strings.Contains(out.String(), want) {
		t.Errorf("output missing %q:\n%s", want, out.String())
	}
}

func TestRenderGoalsAndReports(t *testing.T) {
	var out bytes.Buffer
	if err := RenderGoals(&out, rules.Default()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Gadget") || !strings.Contains(out.String(), "(other)") {
		t.Errorf("goals table:\n%s", out.String())
	}

	out.Reset()
	if err := RenderReports(&out, nil, "₹"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No reports") {
		t.Errorf("empty reports output: %q", out.String())
	}

	out.Reset()
	feasible := false
	reports := []core.Report{{ID: "r-1", Source: "jan.csv", Budget: decimal.NewFromInt(20000), GoalLabel: "Gadget", GoalFeasible: &feasible}}
	if err := RenderReports(&out, reports, "₹"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Gadget (not feasible)") || !strings.Contains(out.String(), "₹20000.00") {
		t.Errorf("reports table:\n%s", out.String())
	}
}
