package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	BasisNone           SpendBasis = "none"
	BasisTotal          SpendBasis = "total"
	BasisMonthlyAverage SpendBasis = "monthly_average"
)

type (
	// SpendBasis tells how BudgetAnalysis.SpendMetric was derived.
	SpendBasis string

	Date struct {
		time.Time
	}

	Transaction struct {
		Date     Date
		Category string
		Amount   decimal.Decimal
	}

	// CategoryAmount is one entry of a category breakdown.
	CategoryAmount struct {
		Category string
		Amount   decimal.Decimal
	}

	BudgetAnalysis struct {
		Budget            decimal.Decimal
		SpendMetric       decimal.Decimal
		Basis             SpendBasis
		Remaining         decimal.Decimal // may be negative
		MonthsDetected    int
		Months            []MonthKey
		CategoryBreakdown []CategoryAmount
	}
)

// Error kinds reported to callers. Everything past validation is arithmetic
// and cannot fail.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingColumns    = errors.New("missing required columns")
	ErrInvalidBudget     = errors.New("invalid budget")
	ErrInvalidGoal       = errors.New("invalid goal")

	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("negative amount")
	ErrEmptyCategory  = errors.New("empty category")
	ErrInvalidDate    = errors.New("invalid date")
)

// Label returns the human label of the basis, as shown next to SpendMetric.
func (b SpendBasis) Label() string {
	switch b {
	case BasisTotal:
		return "total spent"
	case BasisMonthlyAverage:
		return "average monthly spend"
	default:
		return "no spending recorded"
	}
}

// PerMonth reports whether amounts computed on this basis are monthly averages.
func (b SpendBasis) PerMonth() bool {
	return b == BasisMonthlyAverage
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// MonthKey returns the calendar month the date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Month()}
}

// Validate reports the first problem found, checking category, then amount,
// then date.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Label returns the display label for the spend metric, e.g. "total spent".
func (a BudgetAnalysis) Label() string {
	return a.Basis.Label()
}

// OverBudget reports whether spending exceeds the budget.
func (a BudgetAnalysis) OverBudget() bool {
	return a.Remaining.IsNegative()
}

// MonthLabels returns the detected months as display labels, oldest first.
func (a BudgetAnalysis) MonthLabels() []string {
	out := make([]string, len(a.Months))
	for i, m := range a.Months {
		out[i] = m.String()
	}
	return out
}

// Lookup returns the breakdown amount for a category.
func (a BudgetAnalysis) Lookup(category string) (decimal.Decimal, bool) {
	for _, c := range a.CategoryBreakdown {
		if c.Category == category {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}
