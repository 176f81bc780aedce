package confidence

import "math"

// Category is an ordinal bucket of confidence. It is never stored; callers
// recompute it from the confidence whenever it is displayed.
type Category string

const (
	Exact  Category = "exact"
	High   Category = "high"
	Medium Category = "medium"
	Low    Category = "low"
	Weak   Category = "weak"
)

// Categories lists every category from best to worst.
var Categories = []Category{Exact, High, Medium, Low, Weak}

// Inclusive lower bounds.
const (
	ExactFloor  = 0.95
	HighFloor   = 0.8
	MediumFloor = 0.6
	LowFloor    = 0.4
)

// Classify maps a confidence onto its category. A value sitting on a breakpoint
// belongs to the higher category.
func Classify(c float64) Category {
	assertInRange("confidence", c)

	switch {
	case math.IsNaN(c):
		return Weak
	case c >= ExactFloor:
		return Exact
	case c >= HighFloor:
		return High
	case c >= MediumFloor:
		return Medium
	case c >= LowFloor:
		return Low
	default:
		return Weak
	}
}

// Confident is anything carrying a confidence: fuzzy results and duplicate candidates.
type Confident interface {
	Confidence() float64
}

// GroupByCategory buckets results into exact, high, medium and low, keeping input
// order inside each bucket.
//
// Weak results are dropped even though Classify reports them: the grouped view
// only has four sections. Callers that need every result must use Classify.
func GroupByCategory[T Confident](results []T) map[Category][]T {
	groups := map[Category][]T{
		Exact:  {},
		High:   {},
		Medium: {},
		Low:    {},
	}

	for _, r := range results {
		category := Classify(r.Confidence())
		if category == Weak {
			continue
		}
		groups[category] = append(groups[category], r)
	}

	return groups
}
