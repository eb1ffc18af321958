// Package analysis groups transactions by month and category and turns the
// result into a BudgetAnalysis.
package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"finbot/internal/core"
)

// MonthOverview is the per-category spending of one calendar month.
type MonthOverview struct {
	Month      core.MonthKey
	Total      decimal.Decimal
	ByCategory map[string]decimal.Decimal
}

// Aggregation holds the per-(month, category) sums of a transaction set.
type Aggregation struct {
	// Months is ordered oldest first.
	Months []MonthOverview
}

// Aggregate groups txs by calendar month and category.
func Aggregate(txs []core.Transaction) Aggregation {
	byMonth := make(map[core.MonthKey]*MonthOverview)
	for _, tx := range txs {
		key := tx.Date.MonthKey()
		m, ok := byMonth[key]
		if !ok {
			m = &MonthOverview{Month: key, ByCategory: make(map[string]decimal.Decimal)}
			byMonth[key] = m
		}
		m.ByCategory[tx.Category] = m.ByCategory[tx.Category].Add(tx.Amount)
		m.Total = m.Total.Add(tx.Amount)
	}

	keys := make([]core.MonthKey, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	core.SortMonths(keys)

	agg := Aggregation{Months: make([]MonthOverview, 0, len(keys))}
	for _, k := range keys {
		agg.Months = append(agg.Months, *byMonth[k])
	}
	return agg
}

// MonthKeys returns the detected months, oldest first.
func (a Aggregation) MonthKeys() []core.MonthKey {
	keys := make([]core.MonthKey, len(a.Months))
	for i, m := range a.Months {
		keys[i] = m.Month
	}
	return keys
}

// Basis reports how the breakdown is derived from the number of months.
func (a Aggregation) Basis() core.SpendBasis {
	switch len(a.Months) {
	case 0:
		return core.BasisNone
	case 1:
		return core.BasisTotal
	default:
		return core.BasisMonthlyAverage
	}
}

// Breakdown returns per-category amounts, largest first.
//
// With one month the amounts are totals. With several, each category is
// averaged over the months in which it appears; a month without the category
// does not count as a zero.
func (a Aggregation) Breakdown() []core.CategoryAmount {
	sums := make(map[string]decimal.Decimal)
	seen := make(map[string]int64)
	for _, m := range a.Months {
		for cat, amount := range m.ByCategory {
			sums[cat] = sums[cat].Add(amount)
			seen[cat]++
		}
	}

	out := make([]core.CategoryAmount, 0, len(sums))
	for cat, sum := range sums {
		amount := sum
		if len(a.Months) > 1 {
			amount = sum.Div(decimal.NewFromInt(seen[cat]))
		}
		out = append(out, core.CategoryAmount{Category: cat, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
