package core

import (
	"fmt"
	"sort"
	"time"
)

// MonthKey identifies a calendar month. It is only used as a grouping key.
type MonthKey struct {
	Year  int
	Month time.Month
}

// String renders the key as "Jan 2026".
func (m MonthKey) String() string {
	return fmt.Sprintf("%s %04d", m.Month.String()[:3], m.Year)
}

// Before orders keys chronologically.
func (m MonthKey) Before(o MonthKey) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// SortMonths sorts keys oldest first.
func SortMonths(keys []MonthKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
}
