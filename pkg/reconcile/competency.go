// Package reconcile classifies allocations by competency and pairs statement
// transactions with allocations of equal amount.
package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// EffectiveDate returns the date that governs period classification:
// the posting date when present, otherwise the fact date.
func EffectiveDate(a model.Allocation) string {
	if strings.TrimSpace(a.PostingDate) != "" {
		return a.PostingDate
	}
	return a.Date
}

// ParseDayMonthYear parses d/m/yy or d/m/yyyy. Two-digit years are read as 20YY.
func ParseDayMonthYear(s string) (day int, month time.Month, year int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}

	d, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || d < 1 || d > 31 {
		return 0, 0, 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, 0, false
	}

	yearStr := strings.TrimSpace(parts[2])
	y, err := strconv.Atoi(yearStr)
	if err != nil || y < 0 {
		return 0, 0, 0, false
	}
	switch len(yearStr) {
	case 2:
		y += 2000
	case 4:
	default:
		return 0, 0, 0, false
	}

	return d, time.Month(m), y, true
}

// InCompetency reports whether the allocation belongs to the competency.
// Empty or malformed dates are treated as in-period so that missing data
// never hides an item from the pending-allocation view.
func InCompetency(a model.Allocation, c model.Competency) bool {
	_, month, year, ok := ParseDayMonthYear(EffectiveDate(a))
	if !ok {
		return true
	}
	return month == c.Month && year == c.Year
}

// SplitByCompetency separates allocations into in-period and out-of-period
// subsets, preserving input order in both.
func SplitByCompetency(allocs []model.Allocation, c model.Competency) (in, out []model.Allocation) {
	in = make([]model.Allocation, 0, len(allocs))
	out = make([]model.Allocation, 0)
	for _, a := range allocs {
		if InCompetency(a, c) {
			in = append(in, a)
		} else {
			out = append(out, a)
		}
	}
	return in, out
}
