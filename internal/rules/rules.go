// Package rules holds the read-only tables the engine classifies against:
// per-category spending limits, named savings goals and the discretionary
// watch-list. A Rules value is built once at startup and shared.
package rules

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCurrency            = "₹"
	DefaultLimitPercent        = 20
	DefaultGoalMonths          = 6
	DefaultFallbackExplanation = "Based on your expenses and budget, focus on reducing discretionary " +
		"spending, prioritizing essential categories, and consistently saving " +
		"towards your financial goals."
)

// Goal is a named savings goal with its default duration.
type Goal struct {
	Name        string
	Months      int
	Description string
}

// Rules is immutable after construction; all accessors return copies.
type Rules struct {
	currency      string
	defaultLimit  decimal.Decimal
	limits        map[string]decimal.Decimal
	goals         map[string]Goal
	defaultMonths int
	discretionary []string
	fallback      string
}

// File is the on-disk YAML shape of the rules.
type File struct {
	Currency            string             `yaml:"currency"`
	DefaultLimitPercent float64            `yaml:"default_limit_percent"`
	CategoryLimits      map[string]float64 `yaml:"category_limits"`
	DefaultGoalMonths   int                `yaml:"default_goal_months"`
	Goals               []GoalFile         `yaml:"goals"`
	Discretionary       []string           `yaml:"discretionary"`
	FallbackExplanation string             `yaml:"fallback_explanation"`
}

type GoalFile struct {
	Name        string `yaml:"name"`
	Months      int    `yaml:"months"`
	Description string `yaml:"description"`
}

// DefaultFile returns the built-in tables.
func DefaultFile() File {
	return File{
		Currency:            DefaultCurrency,
		DefaultLimitPercent: DefaultLimitPercent,
		CategoryLimits: map[string]float64{
			"Food":          40,
			"Rent":          35,
			"Shopping":      15,
			"Entertainment": 10,
			"Travel":        10,
			"Utilities":     10,
		},
		DefaultGoalMonths: DefaultGoalMonths,
		Goals: []GoalFile{
			{Name: "Emergency Fund", Months: 6, Description: "Financial safety net"},
			{Name: "Travel", Months: 6, Description: "Trip or vacation"},
			{Name: "Gadget", Months: 4, Description: "Laptop / phone purchase"},
			{Name: "Investment", Months: 12, Description: "Long-term wealth building"},
		},
		Discretionary:       []string{"Shopping", "Entertainment", "Travel"},
		FallbackExplanation: DefaultFallbackExplanation,
	}
}

// Default returns the built-in rules.
func Default() *Rules {
	r, err := New(DefaultFile())
	if err != nil {
		panic(fmt.Sprintf("built-in rules are invalid: %v", err))
	}
	return r
}

// Load reads a YAML rules file. Fields left out keep their built-in values,
// except category_limits and goals which replace the defaults when present.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML rules over the defaults.
func Parse(data []byte) (*Rules, error) {
	f := DefaultFile()
	var overlay File
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	if overlay.Currency != "" {
		f.Currency = overlay.Currency
	}
	if overlay.DefaultLimitPercent != 0 {
		f.DefaultLimitPercent = overlay.DefaultLimitPercent
	}
	if overlay.CategoryLimits != nil {
		f.CategoryLimits = overlay.CategoryLimits
	}
	if overlay.DefaultGoalMonths != 0 {
		f.DefaultGoalMonths = overlay.DefaultGoalMonths
	}
	if overlay.Goals != nil {
		f.Goals = overlay.Goals
	}
	if overlay.Discretionary != nil {
		f.Discretionary = overlay.Discretionary
	}
	if overlay.FallbackExplanation != "" {
		f.FallbackExplanation = overlay.FallbackExplanation
	}
	return New(f)
}

// New validates f and builds an immutable Rules.
func New(f File) (*Rules, error) {
	var problems []string

	if f.DefaultLimitPercent <= 0 || f.DefaultLimitPercent > 100 {
		problems = append(problems, fmt.Sprintf("default limit %v: must be in (0, 100]", f.DefaultLimitPercent))
	}
	if f.DefaultGoalMonths < 1 {
		problems = append(problems, fmt.Sprintf("default goal months %d: must be at least 1", f.DefaultGoalMonths))
	}

	limits := make(map[string]decimal.Decimal, len(f.CategoryLimits))
	for name, pct := range f.CategoryLimits {
		name = strings.TrimSpace(name)
		if name == "" {
			problems = append(problems, "category limit with empty name")
			continue
		}
		if pct <= 0 || pct > 100 {
			problems = append(problems, fmt.Sprintf("limit for %s %v: must be in (0, 100]", name, pct))
			continue
		}
		limits[name] = decimal.NewFromFloat(pct)
	}

	goals := make(map[string]Goal, len(f.Goals))
	for _, g := range f.Goals {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			problems = append(problems, "goal with empty name")
			continue
		}
		if g.Months < 1 {
			problems = append(problems, fmt.Sprintf("goal %s months %d: must be at least 1", name, g.Months))
			continue
		}
		goals[name] = Goal{Name: name, Months: g.Months, Description: g.Description}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid rules:\n- %s", strings.Join(problems, "\n- "))
	}

	currency := f.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	fallback := strings.TrimSpace(f.FallbackExplanation)
	if fallback == "" {
		fallback = DefaultFallbackExplanation
	}

	return &Rules{
		currency:      currency,
		defaultLimit:  decimal.NewFromFloat(f.DefaultLimitPercent),
		limits:        limits,
		goals:         goals,
		defaultMonths: f.DefaultGoalMonths,
		discretionary: append([]string(nil), f.Discretionary...),
		fallback:      fallback,
	}, nil
}

// Currency is the symbol printed in front of amounts.
func (r *Rules) Currency() string { return r.currency }

// LimitFor returns the maximum share of the budget, in percent, that a
// category may take.
func (r *Rules) LimitFor(category string) decimal.Decimal {
	if pct, ok := r.limits[category]; ok {
		return pct
	}
	return r.defaultLimit
}

// Goal looks up a named goal.
func (r *Rules) Goal(name string) (Goal, bool) {
	g, ok := r.goals[name]
	return g, ok
}

// Goals returns all named goals sorted by name.
func (r *Rules) Goals() []Goal {
	out := make([]Goal, 0, len(r.goals))
	for _, g := range r.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultGoalMonths applies to goal labels missing from the table.
func (r *Rules) DefaultGoalMonths() int { return r.defaultMonths }

// Discretionary returns the watch-list used to nudge spending cuts.
func (r *Rules) Discretionary() []string {
	return append([]string(nil), r.discretionary...)
}

// FallbackExplanation is the fixed text used when no narration is available.
func (r *Rules) FallbackExplanation() string { return r.fallback }
