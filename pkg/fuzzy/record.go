package fuzzy

import (
	"fmt"
	"strconv"
)

// Searchable is implemented by records a Matcher can rank.
// SearchValue returns the string form of the named field, or "" when absent.
type Searchable interface {
	SearchValue(key string) string
}

// Record adapts a loosely typed row (decoded JSON, imported spreadsheet data) to Searchable.
type Record map[string]any

func (r Record) SearchValue(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
