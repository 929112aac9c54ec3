package schema

import (
	"fmt"

	"github.com/tripfeed/curator/pkg/curator/envelope"
	"github.com/tripfeed/curator/pkg/curator/normalize"
)

// Field-level strategy helpers shared by the built-in definitions. Each is
// total: absent fields are skipped, failures become diagnostics.

// normalizeTimestampField canonicalizes a payload timestamp field in place.
// Invalid input is a hard error naming the field.
func normalizeTimestampField(env *envelope.Envelope, res *envelope.Result, field string) {
	v, ok := env.Get(field)
	if !ok || v == nil {
		return
	}
	s, ok := v.(string)
	if !ok {
		res.Errorf("%s invalid timestamp: value is not a string", field)
		return
	}
	normalized, err := normalize.Timestamp(s)
	if err != nil {
		res.Errorf("%s invalid timestamp: %v", field, err)
		return
	}
	env.Set(field, normalized)
}

// normalizeCurrencyField upper-cases a currency field and records a hard
// error when the result is not three letters.
func normalizeCurrencyField(env *envelope.Envelope, res *envelope.Result, field string) {
	v, ok := env.Get(field)
	if !ok || v == nil {
		return
	}
	s, ok := v.(string)
	if !ok {
		res.Errorf("%s must be a string", field)
		return
	}
	normalized, valid := normalize.Currency(s)
	env.Set(field, normalized)
	if !valid {
		res.Errorf("%s must be a valid ISO 4217 code (3 letters)", field)
	}
}

// normalizeStatusField canonicalizes an enumerated flight status. Unknown
// values warn and keep the original: canonical intent is ambiguous.
func normalizeStatusField(env *envelope.Envelope, res *envelope.Result, field string) {
	v, ok := env.Get(field)
	if !ok || v == nil {
		return
	}
	s := stringify(v)
	canonical, known := normalize.FlightStatus(s)
	if !known {
		res.Warnf("unknown %s: %v", field, v)
		return
	}
	env.Set(field, canonical)
}

// normalizeAircraftField upper-cases the aircraft type and warns when it is
// outside the known fleet.
func normalizeAircraftField(env *envelope.Envelope, res *envelope.Result, field string) {
	v, ok := env.Get(field)
	if !ok || v == nil {
		return
	}
	normalized, known := normalize.AircraftType(stringify(v))
	env.Set(field, normalized)
	if !known {
		res.Warnf("unknown aircraft type: %s", normalized)
	}
}

// warnIfOutOfOrder records a warning when the arrival field precedes the
// departure field. Ordering anomalies are data-quality concerns, not
// malformed messages, so this never errors. Both fields must already be
// normalized (or at least parseable) to compare.
func warnIfOutOfOrder(env *envelope.Envelope, res *envelope.Result, departureField, arrivalField string) {
	dep, okDep := env.Get(departureField)
	arr, okArr := env.Get(arrivalField)
	if !okDep || !okArr {
		return
	}
	depStr, okDep := dep.(string)
	arrStr, okArr := arr.(string)
	if !okDep || !okArr {
		return
	}
	depTime, errDep := normalize.ParseTimestamp(depStr)
	arrTime, errArr := normalize.ParseTimestamp(arrStr)
	if errDep != nil || errArr != nil {
		return
	}
	if arrTime.Before(depTime) {
		res.Warnf("%s precedes %s", arrivalField, departureField)
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
