package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Finding is the classification of one category against its limit.
type Finding struct {
	Category string
	Amount   decimal.Decimal
	Percent  decimal.Decimal // share of the budget
	Limit    decimal.Decimal // allowed share, in percent
	Over     bool
	ReduceBy decimal.Decimal // zero unless Over
}

// RecommendationSummary splits the breakdown into overspent and
// within-limit categories.
type RecommendationSummary struct {
	Findings []Finding
	Avoid    []string
	Okay     []string
	Actions  []string
	Goal     string
}

// DurationSource tells where a goal's duration came from.
type DurationSource string

const (
	DurationCustom  DurationSource = "custom"
	DurationTable   DurationSource = "table"
	DurationDefault DurationSource = "default"
)

// GoalPlan is the feasibility verdict for a savings goal.
type GoalPlan struct {
	Label            string
	Description      string
	TargetAmount     decimal.Decimal
	DurationMonths   int
	DurationSource   DurationSource
	MonthlyRequired  decimal.Decimal
	AvailableSavings decimal.Decimal
	Feasible         bool
	Shortfall        decimal.Decimal // zero when feasible
	Steps            []string
}

// PlanStep is one numbered entry of an ActionPlan.
type PlanStep struct {
	Number int
	Text   string
}

// ActionPlan is an ordered list of steps numbered from 1.
type ActionPlan struct {
	Steps []PlanStep
}

// Strings renders the plan as "1. ..." lines.
func (p ActionPlan) Strings() []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = strconv.Itoa(s.Number) + ". " + s.Text
	}
	return out
}

// String renders the plan one step per line.
func (p ActionPlan) String() string {
	return strings.Join(p.Strings(), "\n")
}

// Report is the archived summary of one analysis. It never carries
// transaction rows.
type Report struct {
	ID                string          `json:"id"`
	CreatedAt         time.Time       `json:"created_at"`
	Source            string          `json:"source"`
	Budget            decimal.Decimal `json:"budget"`
	SpendMetric       decimal.Decimal `json:"spend_metric"`
	SpendBasis        SpendBasis      `json:"spend_basis"`
	Remaining         decimal.Decimal `json:"remaining"`
	MonthsDetected    int             `json:"months_detected"`
	AvoidCount        int             `json:"avoid_count"`
	OkayCount         int             `json:"okay_count"`
	GoalLabel         string          `json:"goal_label,omitempty"`
	GoalFeasible      *bool           `json:"goal_feasible,omitempty"`
	DroppedRows       int             `json:"dropped_rows"`
	ExplanationSource string          `json:"explanation_source"`
}
