// Package confidence turns match scores into a bounded confidence, a coarse
// category and the display attributes shared by every matching screen.
//
// Two independent inputs feed it. The client-side fuzzy matcher produces a raw
// dissimilarity (FromScore) and the batch-import service supplies duplicate
// candidates with a 0-100 percentage (FromMatchScore). They are kept as two
// named conversions so that neither scale leaks into the other.
package confidence

import "math"

// FromScore converts a raw matcher score (0 = identical, 1 = unrelated) to a confidence.
func FromScore(score float64) float64 {
	switch {
	case math.IsNaN(score):
		return 0
	case score <= 0:
		return 1
	case score >= 1:
		return 0
	}
	return clamp(1 - score)
}

// FromMatchScore converts a server-supplied duplicate match percentage to a confidence.
func FromMatchScore(matchScore int) float64 {
	c := float64(matchScore) / 100
	assertInRange("match_score/100", c)
	return clamp(c)
}

func clamp(c float64) float64 {
	return math.Max(0, math.Min(1, c))
}
