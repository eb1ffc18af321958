// Package explain narrates an analysis result in plain language.
//
// Narration is optional. Every Provider may fail; callers substitute the
// Fallback text in that case.
package explain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"finbot/internal/core"
)

// Provider turns a recommendation summary and optional goal plan into a
// short narrative.
type Provider interface {
	Explain(ctx context.Context, summary core.RecommendationSummary, goal *core.GoalPlan) (string, error)
}

// Fallback always returns a fixed text.
type Fallback struct {
	Text string
}

func (f Fallback) Explain(context.Context, core.RecommendationSummary, *core.GoalPlan) (string, error) {
	return f.Text, nil
}

// Prompt renders the input of a provider as plain text.
func Prompt(summary core.RecommendationSummary, goal *core.GoalPlan) string {
	var b strings.Builder
	b.WriteString("Explain the following financial advice in simple language.\n\n")
	writeList(&b, "Overspending areas", summary.Avoid)
	writeList(&b, "Safe spending areas", summary.Okay)
	fmt.Fprintf(&b, "Goal: %s\n", summary.Goal)
	writeList(&b, "Action steps", summary.Actions)
	if goal != nil {
		fmt.Fprintf(&b, "Goal plan: %s, target %s over %d months, %s per month required, feasible: %t\n",
			goal.Label, goal.TargetAmount.StringFixed(2), goal.DurationMonths,
			goal.MonthlyRequired.StringFixed(2), goal.Feasible)
		writeList(&b, "Goal steps", goal.Steps)
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

// Key is a stable digest of a provider input, suitable as a cache key.
func Key(summary core.RecommendationSummary, goal *core.GoalPlan) string {
	sum := sha256.Sum256([]byte(Prompt(summary, goal)))
	return hex.EncodeToString(sum[:])
}
