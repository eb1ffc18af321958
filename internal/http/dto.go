package http

import (
	"time"

	"finbot/internal/core"
	"finbot/internal/ingest"
	"finbot/internal/rules"
	"finbot/internal/services"
)

// Amounts leave the engine as decimals and are rounded to two places here.

type CategoryDTO struct {
	Category     string  `json:"category"`
	Amount       float64 `json:"amount"`
	Percent      float64 `json:"percent_of_budget"`
	LimitPercent float64 `json:"limit_percent"`
	Over         bool    `json:"over_limit"`
	ReduceBy     float64 `json:"reduce_by,omitempty"`
}

type AnalysisDTO struct {
	Budget         float64       `json:"budget"`
	SpendMetric    float64       `json:"spend_metric"`
	SpendLabel     string        `json:"spend_label"`
	Basis          string        `json:"basis"`
	Remaining      float64       `json:"remaining"`
	OverBudget     bool          `json:"over_budget"`
	MonthsDetected int           `json:"months_detected"`
	Months         []string      `json:"months"`
	Breakdown      []CategoryDTO `json:"category_breakdown"`
}

type RecommendationDTO struct {
	Avoid   []string `json:"avoid"`
	Okay    []string `json:"okay"`
	Actions []string `json:"actions"`
	Goal    string   `json:"goal"`
}

type GoalPlanDTO struct {
	Label            string   `json:"label"`
	Description      string   `json:"description,omitempty"`
	TargetAmount     float64  `json:"target_amount"`
	DurationMonths   int      `json:"duration_months"`
	DurationSource   string   `json:"duration_source"`
	MonthlyRequired  float64  `json:"monthly_required"`
	AvailableSavings float64  `json:"available_savings"`
	Feasible         bool     `json:"feasible"`
	Shortfall        float64  `json:"shortfall"`
	Steps            []string `json:"steps"`
}

type InputDTO struct {
	Sources         []string       `json:"sources"`
	Rows            int            `json:"rows"`
	Transactions    int            `json:"transactions"`
	DroppedRows     int            `json:"dropped_rows"`
	DroppedByReason map[string]int `json:"dropped_by_reason"`
}

// AnalyzeResponse is the body of a successful analysis. Goal is null when
// no goal was requested.
type AnalyzeResponse struct {
	ReportID          string            `json:"report_id,omitempty"`
	Input             InputDTO          `json:"input"`
	Analysis          AnalysisDTO       `json:"analysis"`
	Recommendations   RecommendationDTO `json:"recommendations"`
	Goal              *GoalPlanDTO      `json:"goal"`
	Plan              []string          `json:"plan"`
	Explanation       string            `json:"explanation"`
	ExplanationSource string            `json:"explanation_source"`
}

type ReportDTO struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	Source            string    `json:"source"`
	Budget            float64   `json:"budget"`
	SpendMetric       float64   `json:"spend_metric"`
	SpendBasis        string    `json:"spend_basis"`
	Remaining         float64   `json:"remaining"`
	MonthsDetected    int       `json:"months_detected"`
	AvoidCount        int       `json:"avoid_count"`
	OkayCount         int       `json:"okay_count"`
	GoalLabel         string    `json:"goal_label,omitempty"`
	GoalFeasible      *bool     `json:"goal_feasible,omitempty"`
	DroppedRows       int       `json:"dropped_rows"`
	ExplanationSource string    `json:"explanation_source"`
}

type ReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
	Count   int         `json:"count"`
}

type GoalOptionDTO struct {
	Name        string `json:"name"`
	Months      int    `json:"months"`
	Description string `json:"description,omitempty"`
}

type GoalsResponse struct {
	Goals             []GoalOptionDTO `json:"goals"`
	DefaultGoalMonths int             `json:"default_goal_months"`
}

// NewAnalyzeResponse converts an engine result into its JSON form.
func NewAnalyzeResponse(in ingest.Result, res *services.Result) AnalyzeResponse {
	a := res.Analysis
	findings := make(map[string]core.Finding, len(res.Summary.Findings))
	for _, f := range res.Summary.Findings {
		findings[f.Category] = f
	}

	breakdown := make([]CategoryDTO, 0, len(a.CategoryBreakdown))
	for _, c := range a.CategoryBreakdown {
		dto := CategoryDTO{Category: c.Category, Amount: core.Round2(c.Amount)}
		if f, ok := findings[c.Category]; ok {
			dto.Percent = core.Round2(f.Percent)
			dto.LimitPercent = core.Round2(f.Limit)
			dto.Over = f.Over
			dto.ReduceBy = core.Round2(f.ReduceBy)
		}
		breakdown = append(breakdown, dto)
	}

	out := AnalyzeResponse{
		ReportID: res.ReportID,
		Input:    newInputDTO(in),
		Analysis: AnalysisDTO{
			Budget:         core.Round2(a.Budget),
			SpendMetric:    core.Round2(a.SpendMetric),
			SpendLabel:     a.Label(),
			Basis:          string(a.Basis),
			Remaining:      core.Round2(a.Remaining),
			OverBudget:     a.OverBudget(),
			MonthsDetected: a.MonthsDetected,
			Months:         a.MonthLabels(),
			Breakdown:      breakdown,
		},
		Recommendations: RecommendationDTO{
			Avoid:   nonNil(res.Summary.Avoid),
			Okay:    nonNil(res.Summary.Okay),
			Actions: nonNil(res.Summary.Actions),
			Goal:    res.Summary.Goal,
		},
		Plan:              nonNil(res.Plan.Strings()),
		Explanation:       res.Explanation,
		ExplanationSource: res.ExplanationSource,
	}
	if g := res.Goal; g != nil {
		out.Goal = &GoalPlanDTO{
			Label:            g.Label,
			Description:      g.Description,
			TargetAmount:     core.Round2(g.TargetAmount),
			DurationMonths:   g.DurationMonths,
			DurationSource:   string(g.DurationSource),
			MonthlyRequired:  core.Round2(g.MonthlyRequired),
			AvailableSavings: core.Round2(g.AvailableSavings),
			Feasible:         g.Feasible,
			Shortfall:        core.Round2(g.Shortfall),
			Steps:            nonNil(g.Steps),
		}
	}
	return out
}

func newInputDTO(in ingest.Result) InputDTO {
	reasons := make(map[string]int, len(in.DroppedByReason))
	for k, v := range in.DroppedByReason {
		reasons[string(k)] = v
	}
	return InputDTO{
		Sources:         nonNil(in.Sources),
		Rows:            in.Rows,
		Transactions:    len(in.Transactions),
		DroppedRows:     in.Dropped,
		DroppedByReason: reasons,
	}
}

func newReportDTO(r core.Report) ReportDTO {
	return ReportDTO{
		ID:                r.ID,
		CreatedAt:         r.CreatedAt,
		Source:            r.Source,
		Budget:            core.Round2(r.Budget),
		SpendMetric:       core.Round2(r.SpendMetric),
		SpendBasis:        string(r.SpendBasis),
		Remaining:         core.Round2(r.Remaining),
		MonthsDetected:    r.MonthsDetected,
		AvoidCount:        r.AvoidCount,
		OkayCount:         r.OkayCount,
		GoalLabel:         r.GoalLabel,
		GoalFeasible:      r.GoalFeasible,
		DroppedRows:       r.DroppedRows,
		ExplanationSource: r.ExplanationSource,
	}
}

func newGoalsResponse(r *rules.Rules) GoalsResponse {
	goals := r.Goals()
	out := GoalsResponse{Goals: make([]GoalOptionDTO, 0, len(goals)), DefaultGoalMonths: r.DefaultGoalMonths()}
	for _, g := range goals {
		out.Goals = append(out.Goals, GoalOptionDTO{Name: g.Name, Months: g.Months, Description: g.Description})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
