package fuzzy

import (
	"encoding/json"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/confidence"
)

// Match describes where the query aligned inside one searched field.
type Match struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	// Indices are inclusive rune offsets into the normalized value.
	Indices [][2]int `json:"indices"`
	Score   float64  `json:"-"`
}

// Result is one ranked record. Item is shared with the collection the matcher was built from.
type Result[T any] struct {
	Item    T
	Score   float64
	Matches []Match

	withScore bool
	exact     bool
}

// Confidence is derived from Score every time it is read.
func (r Result[T]) Confidence() float64 {
	return confidence.FromScore(r.Score)
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := struct {
		Item       T        `json:"item"`
		Score      *float64 `json:"score,omitempty"`
		Confidence float64  `json:"confidence"`
		Matches    []Match  `json:"matches,omitempty"`
	}{
		Item:       r.Item,
		Confidence: r.Confidence(),
		Matches:    r.Matches,
	}
	if r.withScore {
		score := r.Score
		out.Score = &score
	}
	return json.Marshal(out)
}
