// Package http provides HTTP server and handler implementations.
//
// This file parses and validates the analysis form fields.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"finbot/internal/core"
	"finbot/internal/services"
)

// Form field names accepted by the analyze endpoints.
const (
	FieldFile       = "file"
	FieldBudget     = "budget"
	FieldGoal       = "goal"
	FieldGoalAmount = "goal_amount"
	FieldGoalMonths = "goal_months"
)

const (
	defaultReportLimit = 20
	maxReportLimit     = 500
)

// AnalyzeForm holds the parsed non-file fields of an analysis request.
type AnalyzeForm struct {
	Budget decimal.Decimal
	Goal   services.GoalRequest
}

// ParseAnalyzeForm reads budget and goal fields. Parse failures are reported
// with the same sentinel errors the engine uses, so callers map both to the
// same status.
func ParseAnalyzeForm(form url.Values) (AnalyzeForm, error) {
	var out AnalyzeForm

	raw := sanitizeInput(form.Get(FieldBudget))
	if raw == "" {
		return out, fmt.Errorf("%w: budget is required", core.ErrInvalidBudget)
	}
	budget, err := core.ParseDecimal(raw)
	if err != nil {
		return out, fmt.Errorf("%w: %q is not a supported number", core.ErrInvalidBudget, raw)
	}
	out.Budget = budget

	out.Goal.Label = sanitizeInput(form.Get(FieldGoal))

	if raw := sanitizeInput(form.Get(FieldGoalAmount)); raw != "" {
		target, err := core.ParseDecimal(raw)
		if err != nil {
			return out, fmt.Errorf("%w: goal amount %q is not a supported number", core.ErrInvalidGoal, raw)
		}
		out.Goal.Target = target
	}

	if raw := sanitizeInput(form.Get(FieldGoalMonths)); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil {
			return out, fmt.Errorf("%w: goal months %q is not a whole number", core.ErrInvalidGoal, raw)
		}
		out.Goal.Months = months
	}

	return out, nil
}

// ParseLimit reads the limit query parameter, clamped to [1, 500].
func ParseLimit(query url.Values) int {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return defaultReportLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return defaultReportLimit
	}
	if n > maxReportLimit {
		return maxReportLimit
	}
	return n
}

// statusFor maps engine and ingest errors to HTTP statuses.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrInvalidBudget), errors.Is(err, core.ErrInvalidGoal):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrMissingColumns):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
