package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstringDistance(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		dist    int
		span    span
	}{
		{"equal", "abc", "abc", 0, span{0, 2}},
		{"inner substring", "abc", "xxabcxx", 0, span{2, 4}},
		{"one substitution prefers the earliest end", "abd", "xxabcxx", 1, span{2, 3}},
		{"one deletion", "abxc", "abc", 1, span{0, 2}},
		{"nothing shared", "abc", "xyz", 3, span{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, at := substringDistance([]rune(tt.pattern), []rune(tt.text))
			assert.Equal(t, tt.dist, dist)
			if tt.dist < len(tt.pattern) {
				assert.Equal(t, tt.span, at)
			}
		})
	}
}

func TestFieldScore(t *testing.T) {
	t.Run("exact substring scores zero", func(t *testing.T) {
		score, _ := fieldScore([]rune("петр"), []rune("иван петров"))
		assert.Equal(t, 0.0, score)
	})

	t.Run("typo is proportional to query length", func(t *testing.T) {
		score, _ := fieldScore([]rune("abd"), []rune("abc"))
		assert.InDelta(t, 1.0/3.0, score, 1e-9)
	})

	t.Run("no shared characters", func(t *testing.T) {
		score, _ := fieldScore([]rune("zzz"), []rune("abc"))
		assert.Equal(t, noMatch, score)
	})

	t.Run("empty arguments", func(t *testing.T) {
		score, _ := fieldScore(nil, []rune("abc"))
		assert.Equal(t, noMatch, score)
		score, _ = fieldScore([]rune("abc"), nil)
		assert.Equal(t, noMatch, score)
	})

	t.Run("more edits mean a higher score", func(t *testing.T) {
		one, _ := fieldScore([]rune("kovalenko"), []rune("kovalenco"))
		two, _ := fieldScore([]rune("kovalenko"), []rune("kavalenco"))
		assert.Less(t, one, two)
	})
}
