package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Positive requires a numeric value strictly greater than zero.
func Positive() Constraint {
	return Constraint{Name: "positive", Check: func(v any) bool {
		f, ok := asFloat(v)
		return ok && f > 0
	}}
}

// NonNegative requires a numeric value of at least zero.
func NonNegative() Constraint {
	return Constraint{Name: "non_negative", Check: func(v any) bool {
		f, ok := asFloat(v)
		return ok && f >= 0
	}}
}

// AtLeast requires a numeric value of at least n. Nil values are tolerated:
// an absent-but-present-as-null optional field is not a violation.
func AtLeast(n int) Constraint {
	return Constraint{Name: fmt.Sprintf("at_least_%d", n), Check: func(v any) bool {
		if v == nil {
			return true
		}
		f, ok := asFloat(v)
		return ok && f >= float64(n)
	}}
}

// NonEmpty requires a non-empty textual value.
func NonEmpty() Constraint {
	return Constraint{Name: "non_empty", Check: func(v any) bool {
		return len(asString(v)) > 0
	}}
}

// OneOf requires the value's textual form to be one of the given options.
func OneOf(options ...string) Constraint {
	set := make(map[string]struct{}, len(options))
	for _, o := range options {
		set[o] = struct{}{}
	}
	return Constraint{Name: "one_of[" + strings.Join(options, "|") + "]", Check: func(v any) bool {
		_, ok := set[asString(v)]
		return ok
	}}
}

// Email requires an @ when the value is non-empty. Empty values pass: the
// field itself being optional is the registry's concern, not the predicate's.
func Email() Constraint {
	return Constraint{Name: "email", Check: func(v any) bool {
		s := asString(v)
		return s == "" || strings.Contains(s, "@")
	}}
}

// ISODate requires a YYYY-MM-DD calendar date.
func ISODate() Constraint {
	return Constraint{Name: "iso_date", Check: func(v any) bool {
		_, err := time.Parse("2006-01-02", asString(v))
		return err == nil
	}}
}

// CurrencyCode requires an upper-cased value of exactly three letters.
func CurrencyCode() Constraint {
	return Constraint{Name: "currency_code", Check: func(v any) bool {
		s := strings.ToUpper(asString(v))
		if len(s) != 3 {
			return false
		}
		for _, r := range s {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
		return true
	}}
}

// asString renders a scalar for predicate checks.
func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// asFloat extracts a numeric value. Booleans are not numbers.
func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
