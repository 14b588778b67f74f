package search

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/collegiate-app/collegiate/internal/model"
)

// Sort orders colleges in place per the requested column and direction.
// Name sorting is locale aware. Numeric columns treat a missing value
// as +Inf, so unknowns land last ascending and first descending.
func Sort(colleges []model.College, by SortBy, order SortOrder) {
	desc := order == SortDesc

	if by == SortByName {
		col := collate.New(language.AmericanEnglish)
		sort.SliceStable(colleges, func(i, j int) bool {
			cmp := col.CompareString(colleges[i].Name, colleges[j].Name)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
		return
	}

	key := metricKey(by)
	sort.SliceStable(colleges, func(i, j int) bool {
		a, b := key(colleges[i]), key(colleges[j])
		if desc {
			return a > b
		}
		return a < b
	})
}

func metricKey(by SortBy) func(model.College) float64 {
	switch by {
	case SortByAcceptance:
		return func(c model.College) float64 { return floatOrInf(c.AcceptanceRate) }
	case SortByTuitionInState:
		return func(c model.College) float64 { return intOrInf(c.TuitionInState) }
	default:
		return func(c model.College) float64 { return intOrInf(c.StudentSize) }
	}
}

func floatOrInf(p *float64) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return *p
}

func intOrInf(p *int) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return float64(*p)
}
