package fuzzy

// noMatch is the raw score of a value that shares nothing usable with the query.
const noMatch = 1.0

// span is an inclusive rune range inside a searched value.
type span struct {
	start int
	end   int
}

// fieldScore returns the raw score of query against value together with the
// best aligned span. Both arguments must already be normalized.
//
// The score is the smallest edit distance between the query and any substring of
// the value, divided by the query length: an exact substring costs 0, a value with
// no character in common costs 1.
func fieldScore(query, value []rune) (float64, span) {
	if len(query) == 0 || len(value) == 0 {
		return noMatch, span{}
	}

	dist, at := substringDistance(query, value)
	if dist >= len(query) {
		return noMatch, span{}
	}
	return float64(dist) / float64(len(query)), at
}

// cell is one entry of the alignment table: the edit cost so far and the
// position in the value where the alignment started.
type cell struct {
	cost  int
	start int
}

// substringDistance is Levenshtein distance with a free starting and ending
// position in the value (Sellers' algorithm). Ties prefer the earliest end.
func substringDistance(pattern, text []rune) (int, span) {
	prevRow := make([]cell, len(text)+1)
	row := make([]cell, len(text)+1)

	// an alignment may start at any position of the text for free
	for j := 0; j <= len(text); j++ {
		prevRow[j] = cell{cost: 0, start: j}
	}

	for i := 1; i <= len(pattern); i++ {
		row[0] = cell{cost: i, start: 0}
		for j := 1; j <= len(text); j++ {
			subst := prevRow[j-1]
			if pattern[i-1] != text[j-1] {
				subst.cost++
			}
			best := subst

			if del := prevRow[j]; del.cost+1 < best.cost {
				best = cell{cost: del.cost + 1, start: del.start}
			}
			if ins := row[j-1]; ins.cost+1 < best.cost {
				best = cell{cost: ins.cost + 1, start: ins.start}
			}
			row[j] = best
		}
		row, prevRow = prevRow, row
	}

	bestEnd := 0
	for j := 1; j <= len(text); j++ {
		if prevRow[j].cost < prevRow[bestEnd].cost {
			bestEnd = j
		}
	}

	c := prevRow[bestEnd]
	end := bestEnd - 1
	if end < c.start {
		end = c.start
	}
	return c.cost, span{start: c.start, end: end}
}
