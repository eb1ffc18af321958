// Package services holds the budget recommendation logic and the analysis
// entry point that wires it together.
package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finbot/internal/core"
	"finbot/internal/rules"
)

// Recommend classifies every breakdown category against its limit.
//
// Each category lands in exactly one of Avoid or Okay, in breakdown order. A
// category is over when its share of the budget is strictly greater than the
// limit. Budget must be positive.
func Recommend(a core.BudgetAnalysis, r *rules.Rules) core.RecommendationSummary {
	sym := r.Currency()
	summary := core.RecommendationSummary{
		Findings: make([]core.Finding, 0, len(a.CategoryBreakdown)),
		Avoid:    []string{},
		Okay:     []string{},
		Actions:  []string{},
	}

	for _, c := range a.CategoryBreakdown {
		f := classify(c, a.Budget, r.LimitFor(c.Category))
		summary.Findings = append(summary.Findings, f)

		if f.Over {
			summary.Avoid = append(summary.Avoid, fmt.Sprintf("%s: %s (%s%% > %s%%)",
				f.Category, core.FormatMoney(sym, f.Amount), f.Percent.StringFixed(1), f.Limit.String()))
			summary.Actions = append(summary.Actions, fmt.Sprintf("Reduce %s spending by approximately %s",
				f.Category, core.FormatMoney(sym, f.ReduceBy)))
			continue
		}
		summary.Okay = append(summary.Okay, fmt.Sprintf("%s: %s (%s%%)",
			f.Category, core.FormatMoney(sym, f.Amount), f.Percent.StringFixed(1)))
	}

	summary.Goal = goalStatement(a, sym)
	return summary
}

func classify(c core.CategoryAmount, budget, limit decimal.Decimal) core.Finding {
	f := core.Finding{
		Category: c.Category,
		Amount:   c.Amount,
		Percent:  core.Percent(c.Amount, budget),
		Limit:    limit,
		ReduceBy: decimal.Zero,
	}
	if f.Percent.GreaterThan(limit) {
		f.Over = true
		f.ReduceBy = c.Amount.Sub(core.PercentOf(limit, budget))
	}
	return f
}

// goalStatement never prints a negative amount: the savings phrasing is only
// used when something is left.
func goalStatement(a core.BudgetAnalysis, sym string) string {
	if !a.Remaining.IsPositive() {
		return "Reduce discretionary spending to stay within budget"
	}
	period := "this month"
	if a.Basis.PerMonth() {
		period = "per month"
	}
	return fmt.Sprintf("Save %s %s", core.FormatMoney(sym, a.Remaining), period)
}
