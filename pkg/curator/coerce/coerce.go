// Package coerce converts loosely-typed event values into canonical Go
// types. Conversion never panics: every failure path is reported through
// the boolean result so the classifier can record a type-mismatch error
// and keep checking the rest of the event.
package coerce

import (
	"strconv"
	"strings"
)

// Kind identifies a canonical value type a schema can expect.
type Kind int

const (
	String Kind = iota + 1
	Int
	Float
	Bool
	StringList
	Map
)

// String returns the schema-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case StringList:
		return "string list"
	case Map:
		return "map"
	default:
		return "unknown"
	}
}

// Names renders an ordered kind set for diagnostics, e.g. "int, float".
func Names(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

// Value attempts to convert v to each kind in order and returns the first
// successful conversion. When no kind accepts the value, the original
// value is returned with ok=false.
func Value(v any, kinds ...Kind) (any, bool) {
	for _, k := range kinds {
		if converted, ok := one(v, k); ok {
			return converted, true
		}
	}
	return v, false
}

// one attempts a single-kind conversion.
func one(v any, k Kind) (any, bool) {
	switch k {
	case String:
		return toString(v)
	case Int:
		return toInt(v)
	case Float:
		return toFloat(v)
	case Bool:
		return toBool(v)
	case StringList:
		return toStringList(v)
	case Map:
		m, ok := v.(map[string]any)
		return m, ok
	default:
		return v, false
	}
}

// toString stringifies scalar values. Composite values are rejected so a
// list does not silently collapse into its textual form.
func toString(v any) (any, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return v, false
	}
}

// toInt converts numeric values to int64, truncating fractional parts the
// way the upstream producers expect. Booleans are rejected: true is not 1.
func toInt(v any) (any, bool) {
	switch val := v.(type) {
	case bool:
		return v, false
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		return int64(val), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return v, false
		}
		return n, true
	default:
		return v, false
	}
}

// toFloat converts numeric values to float64. Booleans are rejected.
func toFloat(v any) (any, bool) {
	switch val := v.(type) {
	case bool:
		return v, false
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return v, false
		}
		return f, true
	default:
		return v, false
	}
}

// toBool accepts booleans and the conventional string spellings
// (case-insensitive true/1/yes and false/0/no). Anything else fails.
func toBool(v any) (any, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return v, false
}

// toStringList homogenizes list values into []string, stringifying each
// element. A list already of the expected kind passes through unchanged.
func toStringList(v any) (any, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, len(val))
		for i, item := range val {
			s, ok := toString(item)
			if !ok {
				return v, false
			}
			out[i] = s.(string)
		}
		return out, true
	default:
		return v, false
	}
}
