package services

import (
	"finbot/internal/core"
	"finbot/internal/rules"
)

// DurationResolver is one way of choosing how many months a goal spans.
type DurationResolver interface {
	// Resolve returns the duration and true when this resolver applies.
	Resolve(req GoalRequest, r *rules.Rules) (int, bool)
}

// CustomDuration applies when the caller gave an explicit positive duration.
type CustomDuration struct{}

func (CustomDuration) Resolve(req GoalRequest, _ *rules.Rules) (int, bool) {
	return req.Months, req.Months > 0
}

// TableDuration applies when the label is a known goal.
type TableDuration struct{}

func (TableDuration) Resolve(req GoalRequest, r *rules.Rules) (int, bool) {
	g, ok := r.Goal(req.Label)
	if !ok {
		return 0, false
	}
	return g.Months, true
}

// DefaultDuration always applies.
type DefaultDuration struct{}

func (DefaultDuration) Resolve(_ GoalRequest, r *rules.Rules) (int, bool) {
	return r.DefaultGoalMonths(), true
}

type durationStrategy struct {
	source   core.DurationSource
	resolver DurationResolver
}

// durationStrategies are tried in order; the last one always matches.
var durationStrategies = []durationStrategy{
	{core.DurationCustom, CustomDuration{}},
	{core.DurationTable, TableDuration{}},
	{core.DurationDefault, DefaultDuration{}},
}

func resolveDuration(req GoalRequest, r *rules.Rules) (int, core.DurationSource) {
	for _, s := range durationStrategies {
		if months, ok := s.resolver.Resolve(req, r); ok {
			return months, s.source
		}
	}
	return r.DefaultGoalMonths(), core.DurationDefault
}
