package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baytides/climate-quest/pkg/content"
)

// EffectError reports a malformed pair in an effects cell.
type EffectError struct {
	Pair   string
	Reason string
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("invalid effect %q: %s", e.Pair, e.Reason)
}

// ParseEffects decodes "health:-10;supplies:5" into an Effects value. Keys not
// named in the cell stay 0. Pairs with no key or no value are ignored; keys
// outside content.EffectKeys and non-integer values are errors.
func ParseEffects(raw string) (content.Effects, error) {
	var effects content.Effects
	if strings.TrimSpace(raw) == "" {
		return effects, nil
	}

	for _, pair := range strings.Split(raw, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}

		n, err := strconv.Atoi(value)
		if err != nil {
			return content.Effects{}, &EffectError{Pair: pair, Reason: "value is not an integer"}
		}
		if !effects.Set(key, n) {
			return content.Effects{}, &EffectError{Pair: pair, Reason: fmt.Sprintf("unknown key %q (expected one of %s)", key, strings.Join(content.EffectKeys, ", "))}
		}
	}

	return effects, nil
}

// FormatEffects encodes effects in canonical key order, skipping zero entries.
func FormatEffects(e content.Effects) string {
	var pairs []string
	for _, key := range content.EffectKeys {
		if v := e.Get(key); v != 0 {
			pairs = append(pairs, key+":"+strconv.Itoa(v))
		}
	}
	return strings.Join(pairs, ";")
}
