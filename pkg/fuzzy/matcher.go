// Package fuzzy ranks in-memory records against a free-text query using
// approximate substring matching over a fixed set of fields.
package fuzzy

import (
	"slices"
	"sort"
	"sync/atomic"

	"github.com/Gobusters/ectolinq"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/normalizers"
)

// Matcher searches a snapshot of records. It is safe for concurrent use;
// UpdateItems swaps the snapshot without disturbing searches in progress.
type Matcher[T Searchable] struct {
	cfg   Config
	items atomic.Pointer[[]T]
}

// New validates cfg and builds a matcher over items.
func New[T Searchable](items []T, cfg Config) (*Matcher[T], error) {
	cfg, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	m := &Matcher[T]{cfg: cfg}
	m.UpdateItems(items)
	return m, nil
}

// Config returns the configuration the matcher was built with.
func (m *Matcher[T]) Config() Config {
	return m.cfg
}

// Len reports the size of the current snapshot.
func (m *Matcher[T]) Len() int {
	return len(*m.items.Load())
}

// UpdateItems replaces the searched collection wholesale.
func (m *Matcher[T]) UpdateItems(items []T) {
	snapshot := slices.Clone(items)
	m.items.Store(&snapshot)
}

// Search ranks every record whose raw score is within the threshold, best first.
// Among equal scores a record with a field equal to the query comes first, then
// collection order. A limit of zero or less returns all matches.
func (m *Matcher[T]) Search(query string, limit int) []Result[T] {
	items := *m.items.Load()
	results := make([]Result[T], 0)

	q := []rune(m.normalize(query))
	if len(q) == 0 || len(items) == 0 {
		return results
	}

	for _, item := range items {
		result, ok := m.scoreItem(q, item)
		if !ok {
			continue
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return results[i].exact && !results[j].exact
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// SearchWithMinConfidence is Search followed by dropping results below minConfidence.
func (m *Matcher[T]) SearchWithMinConfidence(query string, minConfidence float64, limit int) []Result[T] {
	filtered := ectolinq.Filter(m.Search(query, limit), func(r Result[T]) bool {
		return r.Confidence() >= minConfidence
	})
	if filtered == nil {
		return make([]Result[T], 0)
	}
	return filtered
}

// field is one non-empty normalized searched value of a record.
type field struct {
	key   string
	value string
	runes []rune
}

func (m *Matcher[T]) scoreItem(query []rune, item T) (Result[T], bool) {
	best := noMatch
	exact := false
	var matches []Match
	fields := make([]field, 0, len(m.cfg.Keys))

	for _, key := range m.cfg.Keys {
		value := m.normalize(item.SearchValue(key))
		if value == "" {
			continue
		}
		f := field{key: key, value: value, runes: []rune(value)}
		fields = append(fields, f)
		if slices.Equal(f.runes, query) {
			exact = true
		}

		score, at := fieldScore(query, f.runes)
		if score < best {
			best = score
		}
		if m.cfg.IncludeMatches && score < noMatch && score <= m.cfg.Threshold {
			matches = append(matches, Match{
				Key:     key,
				Value:   value,
				Indices: [][2]int{{at.start, at.end}},
				Score:   score,
			})
		}
	}

	// a query may span several fields, e.g. "first last"
	if len(fields) > 1 {
		score, at := fieldScore(query, joinFields(fields))
		if score < noMatch {
			spans, whole := splitSpan(fields, at, score)
			if score == 0 && whole {
				exact = true
			}
			if score < best {
				best = score
				if m.cfg.IncludeMatches {
					matches = spans
				}
			}
		}
	}

	if best >= noMatch || best > m.cfg.Threshold {
		return Result[T]{}, false
	}

	return Result[T]{
		Item:      item,
		Score:     best,
		Matches:   matches,
		withScore: m.cfg.IncludeScore,
		exact:     exact,
	}, true
}

func joinFields(fields []field) []rune {
	joined := make([]rune, 0)
	for i, f := range fields {
		if i > 0 {
			joined = append(joined, ' ')
		}
		joined = append(joined, f.runes...)
	}
	return joined
}

// splitSpan maps a span over the joined fields back onto each field it touches.
// whole reports whether the span starts and ends on field boundaries.
func splitSpan(fields []field, at span, score float64) ([]Match, bool) {
	var matches []Match
	startsOnBoundary, endsOnBoundary := false, false

	offset := 0
	for _, f := range fields {
		last := offset + len(f.runes) - 1
		from, to := max(at.start, offset), min(at.end, last)
		if from <= to {
			matches = append(matches, Match{
				Key:     f.key,
				Value:   f.value,
				Indices: [][2]int{{from - offset, to - offset}},
				Score:   score,
			})
		}
		if at.start == offset {
			startsOnBoundary = true
		}
		if at.end == last {
			endsOnBoundary = true
		}
		// skip the separating space
		offset = last + 2
	}
	return matches, startsOnBoundary && endsOnBoundary
}

func (m *Matcher[T]) normalize(s string) string {
	return normalizers.ApplyChain(s, m.cfg.Normalizers...)
}
