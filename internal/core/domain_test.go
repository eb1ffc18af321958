package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:     NewDate(2026, 1, 1),
		Category: "Food",
		Amount:   decimal.NewFromInt(100),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := Transaction{Date: NewDate(2026, 1, 1), Category: "Food", Amount: decimal.Zero}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Date: Date{Time: time.Time{}}, Category: "Food", Amount: decimal.NewFromInt(1)}, ErrInvalidDate},
		{Transaction{Date: NewDate(2026, 1, 1), Category: "  ", Amount: decimal.NewFromInt(1)}, ErrEmptyCategory},
		{Transaction{Date: NewDate(2026, 1, 1), Category: "Food", Amount: decimal.NewFromInt(-1)}, ErrNegativeAmount},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestMonthKeyOrderingAcrossYears(t *testing.T) {
	keys := []MonthKey{
		{Year: 2026, Month: time.January},
		{Year: 2025, Month: time.December},
		{Year: 2025, Month: time.April},
	}
	SortMonths(keys)

	want := []string{"Apr 2025", "Dec 2025", "Jan 2026"}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, k, want[i])
		}
	}
}

func TestSpendBasisLabel(t *testing.T) {
	cases := map[SpendBasis]string{
		BasisNone:           "no spending recorded",
		BasisTotal:          "total spent",
		BasisMonthlyAverage: "average monthly spend",
	}
	for basis, want := range cases {
		if got := basis.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", basis, got, want)
		}
	}
	if !BasisMonthlyAverage.PerMonth() || BasisTotal.PerMonth() {
		t.Error("only the monthly average basis is per month")
	}
}

func TestBudgetAnalysisHelpers(t *testing.T) {
	a := BudgetAnalysis{
		Remaining: decimal.NewFromInt(-5),
		Months:    []MonthKey{{Year: 2026, Month: time.February}},
		CategoryBreakdown: []CategoryAmount{
			{Category: "Rent", Amount: decimal.NewFromInt(8000)},
		},
	}
	if !a.OverBudget() {
		t.Error("negative remaining should be over budget")
	}
	if got := a.MonthLabels(); len(got) != 1 || got[0] != "Feb 2026" {
		t.Errorf("unexpected labels %v", got)
	}
	if v, ok := a.Lookup("Rent"); !ok || !v.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("lookup Rent = %v, %v", v, ok)
	}
	if _, ok := a.Lookup("Food"); ok {
		t.Error("Food should be absent")
	}
}
