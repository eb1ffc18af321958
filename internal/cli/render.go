package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"finbot/internal/core"
	"finbot/internal/ingest"
	"finbot/internal/rules"
	"finbot/internal/services"
)

// RenderAnalysis writes a plain-text report of res. Amounts are rounded to
// two places here and nowhere earlier.
func RenderAnalysis(w io.Writer, in ingest.Result, res *services.Result, currency string) error {
	a := res.Analysis
	var b strings.Builder
	months := "none"
	if labels := a.MonthLabels(); len(labels) > 0 {
		months = strings.Join(labels, ", ")
	}
	fmt.Fprintf(&b, "Months analyzed: %s\n", months)
	fmt.Fprintf(&b, "Budget: %s\n", core.FormatMoney(currency, a.Budget))
	fmt.Fprintf(&b, "%s: %s\n", capitalize(a.Label()), core.FormatMoney(currency, a.SpendMetric))
	if a.OverBudget() {
		fmt.Fprintf(&b, "Remaining: %s (over budget by %s)\n",
			core.FormatMoney(currency, a.Remaining), core.FormatMoney(currency, a.Remaining.Neg()))
	} else {
		fmt.Fprintf(&b, "Remaining: %s\n", core.FormatMoney(currency, a.Remaining))
	}
	if in.Dropped > 0 {
		fmt.Fprintf(&b, "Skipped rows: %d of %d\n", in.Dropped, in.Rows)
	}

	if len(a.CategoryBreakdown) > 0 {
		b.WriteString("\nSpending by category:\n")
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		for _, c := range a.CategoryBreakdown {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Category, core.FormatMoney(currency, c.Amount))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	writeList(&b, "Overspending", res.Summary.Avoid)
	writeList(&b, "Within limits", res.Summary.Okay)
	fmt.Fprintf(&b, "\nGoal: %s\n", res.Summary.Goal)

	if g := res.Goal; g != nil {
		fmt.Fprintf(&b, "\nSavings goal: %s\n", g.Label)
		fmt.Fprintf(&b, "  Target: %s over %d months (%s)\n",
			core.FormatMoney(currency, g.TargetAmount), g.DurationMonths, g.DurationSource)
		fmt.Fprintf(&b, "  Required per month: %s\n", core.FormatMoney(currency, g.MonthlyRequired))
		fmt.Fprintf(&b, "  Available savings: %s\n", core.FormatMoney(currency, g.AvailableSavings))
		if g.Feasible {
			b.WriteString("  Feasible: yes\n")
		} else {
			fmt.Fprintf(&b, "  Feasible: no (short by %s)\n", core.FormatMoney(currency, g.Shortfall))
		}
		for _, s := range g.Steps {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}

	b.WriteString("\nAction plan:\n")
	for _, line := range res.Plan.Strings() {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	fmt.Fprintf(&b, "\nExplanation (%s):\n  %s\n", res.ExplanationSource, res.Explanation)
	if res.ReportID != "" {
		fmt.Fprintf(&b, "\nReport: %s\n", res.ReportID)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderGoals writes the goal duration table.
func RenderGoals(w io.Writer, r *rules.Rules) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GOAL\tMONTHS\tDESCRIPTION")
	for _, g := range r.Goals() {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", g.Name, g.Months, g.Description)
	}
	fmt.Fprintf(tw, "(other)\t%d\t\n", r.DefaultGoalMonths())
	return tw.Flush()
}

// RenderReports writes archived report summaries, newest first.
func RenderReports(w io.Writer, reports []core.Report, currency string) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No reports archived yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tID\tSOURCE\tBUDGET\tSPEND\tREMAINING\tAVOID\tGOAL")
	for _, r := range reports {
		goal := "-"
		if r.GoalLabel != "" {
			goal = r.GoalLabel
			if r.GoalFeasible != nil && !*r.GoalFeasible {
				goal += " (not feasible)"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.ID, r.Source,
			core.FormatMoney(currency, r.Budget),
			core.FormatMoney(currency, r.SpendMetric),
			core.FormatMoney(currency, r.Remaining),
			r.AvoidCount, goal)
	}
	return tw.Flush()
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "\n%s:\n", title)
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "  - %s\n", it)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
