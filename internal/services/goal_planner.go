package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finbot/internal/core"
	"finbot/internal/rules"
)

// CustomGoalLabel names a goal requested with a target but no label.
const CustomGoalLabel = "Custom goal"

// GoalRequest is the caller's savings goal. Months of zero means "not given".
type GoalRequest struct {
	Label  string
	Target decimal.Decimal
	Months int
}

// Requested reports whether the caller asked for a goal at all.
func (g GoalRequest) Requested() bool {
	return strings.TrimSpace(g.Label) != "" || !g.Target.IsZero() || g.Months != 0
}

// Validate checks the target and an explicit duration.
func (g GoalRequest) Validate() error {
	if !g.Target.IsPositive() {
		return fmt.Errorf("%w: target amount must be greater than zero", core.ErrInvalidGoal)
	}
	if g.Months < 0 {
		return fmt.Errorf("%w: duration must be a positive number of months, got %d", core.ErrInvalidGoal, g.Months)
	}
	return nil
}

// PlanGoal computes the monthly saving a goal needs and whether the
// analysis leaves room for it.
//
// Available savings are max(remaining, 0): an over-budget month has nothing
// to put aside. The comparison is inclusive, so saving exactly the required
// amount is feasible.
func PlanGoal(a core.BudgetAnalysis, req GoalRequest, r *rules.Rules) (*core.GoalPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		req.Label = CustomGoalLabel
	}

	months, source := resolveDuration(req, r)
	if months <= 0 {
		return nil, fmt.Errorf("%w: duration must be a positive number of months, got %d", core.ErrInvalidGoal, months)
	}

	available := decimal.Max(a.Remaining, decimal.Zero)
	required := req.Target.Div(decimal.NewFromInt(int64(months)))

	plan := &core.GoalPlan{
		Label:            req.Label,
		TargetAmount:     req.Target,
		DurationMonths:   months,
		DurationSource:   source,
		MonthlyRequired:  required,
		AvailableSavings: available,
		Feasible:         available.GreaterThanOrEqual(required),
		Shortfall:        decimal.Zero,
	}
	if g, ok := r.Goal(req.Label); ok {
		plan.Description = g.Description
	}

	sym := r.Currency()
	if plan.Feasible {
		plan.Steps = []string{fmt.Sprintf("Save %s per month to achieve this goal.", core.FormatMoney(sym, required))}
		return plan, nil
	}

	plan.Shortfall = required.Sub(available)
	plan.Steps = []string{fmt.Sprintf("You need %s more per month to reach this goal.", core.FormatMoney(sym, plan.Shortfall))}
	for _, cat := range r.Discretionary() {
		if _, ok := a.Lookup(cat); ok {
			plan.Steps = append(plan.Steps, fmt.Sprintf("Reduce %s spending by %s500–%s1000.", cat, sym, sym))
		}
	}
	return plan, nil
}
