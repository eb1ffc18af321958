package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finbot/internal/analysis"
	"finbot/internal/core"
	"finbot/internal/explain"
	applog "finbot/internal/log"
	"finbot/internal/rules"
)

// Where Result.Explanation came from.
const (
	ExplanationProvider = "provider"
	ExplanationFallback = "fallback"
)

// DefaultExplainTimeout bounds a single explanation call.
const DefaultExplainTimeout = 10 * time.Second

// Request is one analysis invocation.
type Request struct {
	Transactions []core.Transaction
	Budget       decimal.Decimal
	Goal         GoalRequest

	// Source and DroppedRows describe the input for logs and the archive.
	Source      string
	DroppedRows int
}

// Result always has the same shape: Goal is nil when no goal was requested,
// every other field is populated.
type Result struct {
	Analysis          core.BudgetAnalysis
	Summary           core.RecommendationSummary
	Goal              *core.GoalPlan
	Plan              core.ActionPlan
	Explanation       string
	ExplanationSource string
	DroppedRows       int
	ReportID          string // empty unless a recorder is configured
}

// Recorder archives a finished analysis.
type Recorder interface {
	Record(ctx context.Context, report core.Report) error
}

// Analyzer is the analysis entry point. It is safe for concurrent use.
type Analyzer struct {
	rules     *rules.Rules
	explainer explain.Provider
	timeout   time.Duration
	recorder  Recorder
	now       func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithExplainer sets the narration provider. Without one the fallback text
// is always used.
func WithExplainer(p explain.Provider) Option {
	return func(a *Analyzer) { a.explainer = p }
}

// WithExplainTimeout bounds each provider call.
func WithExplainTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithRecorder archives every successful analysis.
func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) { a.recorder = r }
}

// NewAnalyzer creates an Analyzer over an immutable rule set.
func NewAnalyzer(r *rules.Rules, opts ...Option) *Analyzer {
	if r == nil {
		r = rules.Default()
	}
	a := &Analyzer{rules: r, timeout: DefaultExplainTimeout, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Rules returns the rule set the analyzer was built with.
func (a *Analyzer) Rules() *rules.Rules { return a.rules }

// Analyze validates the request and runs the whole pipeline.
//
// Budget and goal errors are returned before anything is computed and no
// partial result is produced. Explanation and archive failures never fail
// the call.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if !req.Budget.IsPositive() {
		return nil, fmt.Errorf("%w: must be greater than zero", core.ErrInvalidBudget)
	}
	wantGoal := req.Goal.Requested()
	if wantGoal {
		if err := req.Goal.Validate(); err != nil {
			return nil, err
		}
	}

	logger := applog.FromContext(ctx).WithComponent(applog.ComponentEngine)

	budgetAnalysis, err := analysis.Analyze(req.Transactions, req.Budget)
	if err != nil {
		return nil, err
	}
	summary := Recommend(budgetAnalysis, a.rules)

	var goal *core.GoalPlan
	if wantGoal {
		goal, err = PlanGoal(budgetAnalysis, req.Goal, a.rules)
		if err != nil {
			return nil, err
		}
	}

	res := &Result{
		Analysis:    budgetAnalysis,
		Summary:     summary,
		Goal:        goal,
		Plan:        SynthesizePlan(budgetAnalysis, summary, goal, a.rules.Currency()),
		DroppedRows: req.DroppedRows,
	}
	res.Explanation, res.ExplanationSource = a.explain(ctx, summary, goal)

	fields := applog.NewFields().WithAnalysis(
		budgetAnalysis.Budget.StringFixed(2),
		budgetAnalysis.SpendMetric.StringFixed(2),
		string(budgetAnalysis.Basis),
		budgetAnalysis.MonthsDetected,
		len(req.Transactions))
	if goal != nil {
		fields.WithGoal(goal.Label, goal.Feasible)
	}
	fields[applog.FieldDroppedRows] = req.DroppedRows
	applog.NewStructuredLogger(logger).LogAnalysisCompleted(ctx, fields)

	if a.recorder != nil {
		report := a.newReport(req, res)
		if err := a.recorder.Record(ctx, report); err != nil {
			logger.ErrorContext(ctx, "Failed to archive report",
				applog.FieldReportID, report.ID,
				applog.FieldError, err)
		} else {
			res.ReportID = report.ID
		}
	}

	return res, nil
}

// explain calls the provider with a deadline and recovers from anything it
// does wrong, including panics and ignoring the context.
func (a *Analyzer) explain(ctx context.Context, summary core.RecommendationSummary, goal *core.GoalPlan) (string, string) {
	fallback := a.rules.FallbackExplanation()
	if a.explainer == nil {
		return fallback, ExplanationFallback
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type answer struct {
		text string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- answer{err: fmt.Errorf("explanation provider panicked: %v", r)}
			}
		}()
		text, err := a.explainer.Explain(ctx, summary, goal)
		done <- answer{text: text, err: err}
	}()

	var ans answer
	select {
	case ans = <-done:
	case <-ctx.Done():
		ans.err = ctx.Err()
	}

	if ans.err == nil && strings.TrimSpace(ans.text) != "" {
		return ans.text, ExplanationProvider
	}
	if ans.err == nil {
		ans.err = explain.ErrEmptyAnswer
	}
	applog.FromContext(ctx).WithComponent(applog.ComponentExplain).WarnContext(ctx,
		"Explanation unavailable, using fallback", applog.FieldError, ans.err)
	return fallback, ExplanationFallback
}

func (a *Analyzer) newReport(req Request, res *Result) core.Report {
	r := core.Report{
		ID:                uuid.NewString(),
		CreatedAt:         a.now().UTC(),
		Source:            req.Source,
		Budget:            res.Analysis.Budget,
		SpendMetric:       res.Analysis.SpendMetric,
		SpendBasis:        res.Analysis.Basis,
		Remaining:         res.Analysis.Remaining,
		MonthsDetected:    res.Analysis.MonthsDetected,
		AvoidCount:        len(res.Summary.Avoid),
		OkayCount:         len(res.Summary.Okay),
		DroppedRows:       req.DroppedRows,
		ExplanationSource: res.ExplanationSource,
	}
	if res.Goal != nil {
		feasible := res.Goal.Feasible
		r.GoalLabel = res.Goal.Label
		r.GoalFeasible = &feasible
	}
	return r
}
