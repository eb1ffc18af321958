package services

import (
	"fmt"

	"finbot/internal/core"
)

// SynthesizePlan linearizes the corrective actions and the goal outcome into
// a numbered plan. Numbering is contiguous whatever optional steps apply.
func SynthesizePlan(a core.BudgetAnalysis, s core.RecommendationSummary, goal *core.GoalPlan, currency string) core.ActionPlan {
	texts := append([]string(nil), s.Actions...)

	if a.Remaining.IsPositive() {
		period := "this month"
		if a.Basis.PerMonth() {
			period = "each month"
		}
		texts = append(texts, fmt.Sprintf("Move %s to savings %s", core.FormatMoney(currency, a.Remaining), period))
	}
	if goal != nil {
		texts = append(texts, fmt.Sprintf("Redirect your savings toward the %s goal", goal.Label))
	}
	texts = append(texts, "Review your spending again next month")

	plan := core.ActionPlan{Steps: make([]core.PlanStep, len(texts))}
	for i, t := range texts {
		plan.Steps[i] = core.PlanStep{Number: i + 1, Text: t}
	}
	return plan
}
