// Package normalize rewrites ambiguous value representations into a single
// canonical form: timestamps to UTC whole-second RFC 3339, currency codes
// to upper-case ISO 4217 shape, enumerated statuses through a
// canonicalization table, and list values to homogeneous string slices.
//
// Every function here is a fixed point: normalizing an already-canonical
// value yields the same value.
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when a timestamp cannot be parsed.
var ErrInvalidTimestamp = errors.New("invalid timestamp format, use ISO 8601 e.g. 2025-01-15T10:30:00Z")

// timestampLayouts are the accepted ISO-8601 shapes, tried in order.
// Layouts without a zone marker are interpreted as UTC. Fractional
// seconds are accepted by all layouts and truncated on output.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp canonicalizes an ISO-8601 timestamp: UTC, truncated to whole
// seconds, with a literal Z suffix.
func Timestamp(value string) (string, error) {
	t, err := ParseTimestamp(value)
	if err != nil {
		return "", err
	}
	return t.UTC().Truncate(time.Second).Format(time.RFC3339), nil
}

// ParseTimestamp parses a permissive ISO-8601 timestamp, treating a bare
// timestamp (no zone marker) as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

var currencyShape = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency upper-cases a currency code and reports whether the result has
// the ISO 4217 shape (exactly three letters).
func Currency(value string) (string, bool) {
	normalized := strings.ToUpper(value)
	return normalized, currencyShape.MatchString(normalized)
}

// flightStatusCanonical maps case/whitespace-normalized status spellings
// to the canonical operational status vocabulary.
var flightStatusCanonical = map[string]string{
	"en hora":   "En hora",
	"en_hora":   "En hora",
	"on time":   "En hora",
	"ontime":    "En hora",
	"demorado":  "Demorado",
	"delayed":   "Demorado",
	"delay":     "Demorado",
	"cancelado": "Cancelado",
	"cancelled": "Cancelado",
}

// FlightStatus canonicalizes a flight operational status. When the value
// is not in the canonicalization table the original is returned with
// ok=false: canonical intent is ambiguous, so the caller warns and keeps
// the value as-is.
func FlightStatus(value string) (string, bool) {
	canonical, ok := flightStatusCanonical[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return value, false
	}
	return canonical, true
}

// validAircraftTypes is the fleet the analytical layer knows about.
var validAircraftTypes = map[string]struct{}{
	"E190": {},
	"A330": {},
	"B737": {},
}

// AircraftType upper-cases an aircraft type code and reports whether it
// belongs to the known fleet. Unknown codes are still normalized.
func AircraftType(value string) (string, bool) {
	normalized := strings.ToUpper(value)
	_, known := validAircraftTypes[normalized]
	return normalized, known
}
