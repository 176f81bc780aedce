package fuzzy

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/normalizers"
)

// ErrInvalidConfig is returned by New when the matcher configuration is unusable.
var ErrInvalidConfig = errors.New("invalid fuzzy search config")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config controls how a Matcher ranks records.
type Config struct {
	// Threshold is the highest raw score a record may have and still be returned.
	// 0 requires an exact substring, 1 accepts almost anything.
	Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`
	// Keys names the record fields to search. Every key weighs the same.
	Keys           []string `json:"keys" validate:"required,min=1,dive,required"`
	IncludeScore   bool     `json:"include_score"`
	IncludeMatches bool     `json:"include_matches"`
	// Normalizers is applied to the query and to every field value. Defaults to normalizers.Default.
	Normalizers []string `json:"normalizers,omitempty"`
}

// DefaultConfig returns the settings used by the console search panels.
func DefaultConfig(keys ...string) Config {
	return Config{
		Threshold:    0.4,
		Keys:         keys,
		IncludeScore: true,
	}
}

func (c Config) validate() (Config, error) {
	c.Keys = slices.Clone(c.Keys)
	c.Normalizers = slices.Clone(c.Normalizers)
	for i, key := range c.Keys {
		c.Keys[i] = strings.TrimSpace(key)
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return c, fmt.Errorf("%w: field %s failed rule '%s' (got %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// keys form a set
	seen := make(map[string]struct{}, len(c.Keys))
	keys := make([]string, 0, len(c.Keys))
	for _, key := range c.Keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	c.Keys = keys

	if len(c.Normalizers) == 0 {
		c.Normalizers = slices.Clone(normalizers.Default)
	}
	for _, name := range c.Normalizers {
		if _, ok := normalizers.Get(name); !ok {
			return c, fmt.Errorf("%w: unknown normalizer %q", ErrInvalidConfig, name)
		}
	}

	return c, nil
}
