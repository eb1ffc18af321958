package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finbot/internal/core"
)

// Analyze combines the aggregates of txs with budget.
//
// The spend metric is the sum of the breakdown, so it is a total for a single
// month and a sum of per-category means otherwise. Remaining is not floored.
func Analyze(txs []core.Transaction, budget decimal.Decimal) (core.BudgetAnalysis, error) {
	if !budget.IsPositive() {
		return core.BudgetAnalysis{}, fmt.Errorf("%w: must be greater than zero, got %s", core.ErrInvalidBudget, budget)
	}

	agg := Aggregate(txs)
	breakdown := agg.Breakdown()

	spend := decimal.Zero
	for _, c := range breakdown {
		spend = spend.Add(c.Amount)
	}

	return core.BudgetAnalysis{
		Budget:            budget,
		SpendMetric:       spend,
		Basis:             agg.Basis(),
		Remaining:         budget.Sub(spend),
		MonthsDetected:    len(agg.Months),
		Months:            agg.MonthKeys(),
		CategoryBreakdown: breakdown,
	}, nil
}
