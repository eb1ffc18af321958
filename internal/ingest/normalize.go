package ingest

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"finbot/internal/core"
	applog "finbot/internal/log"
)

// DropReason names why a row did not make it into the transaction set.
type DropReason string

const (
	DropMissingCategory DropReason = "missing_category"
	DropInvalidAmount   DropReason = "invalid_amount"
	DropNegativeAmount  DropReason = "negative_amount"
	DropInvalidDate     DropReason = "invalid_date"
)

// Result is a cleaned transaction set plus an account of what was discarded.
type Result struct {
	Sources         []string
	Transactions    []core.Transaction
	Rows            int
	Dropped         int
	DroppedByReason map[DropReason]int
}

// dayFirstLayouts are tried in order. Numeric day and month elements accept
// one or two digits, so "2/1/2006" also matches "02/01/2006".
var dayFirstLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2-1-2006 15:04:05",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"2 Jan 2006",
	"2-Jan-2006",
	"2 January 2006",
}

// Normalize applies the column contract to t and cleans every row.
//
// It fails only when the required columns are absent. Malformed rows are
// skipped and counted by reason.
func Normalize(ctx context.Context, t Table) (Result, error) {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentIngest)

	dateCol, catCol, amountCol, err := t.columns()
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Transactions:    make([]core.Transaction, 0, len(t.Rows)),
		DroppedByReason: map[DropReason]int{},
	}
	if t.Source != "" {
		res.Sources = []string{t.Source}
	}

	for i, row := range t.Rows {
		if isBlank(row) {
			continue
		}
		res.Rows++

		tx, reason := parseRow(t.Format, safeGet(row, dateCol), safeGet(row, catCol), safeGet(row, amountCol))
		if reason != "" {
			res.Dropped++
			res.DroppedByReason[reason]++
			logger.DebugContext(ctx, "Skipping row",
				applog.FieldSource, t.Source,
				"row", i+2, // 1-based, after the header
				"reason", string(reason))
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}

	if res.Dropped > 0 {
		logger.WarnContext(ctx, "Dropped malformed rows",
			applog.FieldSource, t.Source,
			applog.FieldDroppedRows, res.Dropped,
			"rows", res.Rows)
	}
	return res, nil
}

func parseRow(format Format, rawDate, rawCategory, rawAmount string) (core.Transaction, DropReason) {
	amount, amountErr := core.ParseAmount(rawAmount)
	date, _ := ParseDate(rawDate, format.HasSerialDates())
	tx := core.Transaction{Date: date, Category: strings.TrimSpace(rawCategory), Amount: amount}

	err := tx.Validate()
	switch {
	case errors.Is(err, core.ErrEmptyCategory):
		return core.Transaction{}, DropMissingCategory
	case errors.Is(err, core.ErrNegativeAmount):
		return core.Transaction{}, DropNegativeAmount
	case amountErr != nil && !errors.Is(amountErr, core.ErrNegativeAmount):
		return core.Transaction{}, DropInvalidAmount
	case errors.Is(err, core.ErrInvalidDate):
		return core.Transaction{}, DropInvalidDate
	}
	return tx, ""
}

// monthFirstLayouts are the fallback for dates that cannot be day-first,
// such as 1/13/2026.
var monthFirstLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"1.2.2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/06",
	"1-2-06",
	"1.2.06",
}

// ParseDate parses s with day-before-month precedence. A month-first reading
// is used only when no day-first reading exists. When serial is true a
// bare number is read as an Excel serial date.
func ParseDate(s string, serial bool) (core.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, false
	}
	if serial {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			t, err := excelize.ExcelDateToTime(v, false)
			if err != nil || v < 1 {
				return core.Date{}, false
			}
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), true
		}
	}
	for _, layouts := range [][]string{dayFirstLayouts, monthFirstLayouts} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return core.NewDate(t.Year(), int(t.Month()), t.Day()), true
			}
		}
	}
	return core.Date{}, false
}

// Merge concatenates results in order.
func Merge(results ...Result) Result {
	out := Result{DroppedByReason: map[DropReason]int{}}
	for _, r := range results {
		out.Sources = append(out.Sources, r.Sources...)
		out.Transactions = append(out.Transactions, r.Transactions...)
		out.Rows += r.Rows
		out.Dropped += r.Dropped
		for k, v := range r.DroppedByReason {
			out.DroppedByReason[k] += v
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
