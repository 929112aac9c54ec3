// Package rules evaluates cross-field and temporal business sanity checks.
//
// Every output is a soft warning. The checks are heuristic judgments about
// data quality, not correctness guarantees, so they must never turn a
// structurally valid event into an error.
package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/tripfeed/curator/pkg/curator/envelope"
	"github.com/tripfeed/curator/pkg/curator/normalize"
)

// MagnitudeRule flags implausibly large monetary values on one field of
// one event type.
type MagnitudeRule struct {
	EventType string
	Field     string
	Ceiling   float64
	Message   string
}

// Evaluator holds the configured heuristics. The zero value is unusable;
// construct with NewEvaluator.
type Evaluator struct {
	now        func() time.Time
	maxFuture  time.Duration
	maxAge     time.Duration
	magnitudes []MagnitudeRule
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithFreshnessWindow overrides how far into the future or past an event
// timestamp may sit before it draws a warning.
func WithFreshnessWindow(maxFuture, maxAge time.Duration) Option {
	return func(e *Evaluator) {
		if maxFuture > 0 {
			e.maxFuture = maxFuture
		}
		if maxAge > 0 {
			e.maxAge = maxAge
		}
	}
}

// WithMagnitudeRules replaces the default monetary magnitude rules.
func WithMagnitudeRules(rules []MagnitudeRule) Option {
	return func(e *Evaluator) {
		e.magnitudes = rules
	}
}

// NewEvaluator creates an Evaluator with the default windows (one hour
// into the future, thirty days into the past) and the default magnitude
// rules for booking prices and rejected payments.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		now:       time.Now,
		maxFuture: time.Hour,
		maxAge:    30 * 24 * time.Hour,
		magnitudes: []MagnitudeRule{
			{
				EventType: "reserva_creada",
				Field:     "precio",
				Ceiling:   50_000,
				Message:   "unusually high ticket price detected",
			},
			{
				EventType: "pago_rechazado",
				Field:     "monto",
				Ceiling:   100_000,
				Message:   "large payment amount detected",
			},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every rule against the (already normalized) envelope.
func (e *Evaluator) Evaluate(env *envelope.Envelope, res *envelope.Result) {
	e.checkFreshness(env, res)
	e.checkMagnitudes(env, res)
}

// checkFreshness warns when the event timestamp is implausibly far from
// the processing clock. A timestamp that failed normalization upstream is
// skipped: it already carries a hard error.
func (e *Evaluator) checkFreshness(env *envelope.Envelope, res *envelope.Result) {
	ts := env.Timestamp()
	if ts == "" {
		return
	}
	eventTime, err := normalize.ParseTimestamp(ts)
	if err != nil {
		return
	}

	delta := eventTime.Sub(e.now())
	switch {
	case delta > e.maxFuture:
		res.Warnf("event timestamp is more than %s in the future", windowText(e.maxFuture))
	case delta < -e.maxAge:
		res.Warnf("event timestamp is more than %s old", windowText(e.maxAge))
	}
}

// windowText renders a freshness window for warning messages: whole
// multiples of a day read as days, anything else as a duration with
// zero minute and second components trimmed.
func windowText(d time.Duration) string {
	const day = 24 * time.Hour
	if d >= day && d%day == 0 {
		if days := int(d / day); days > 1 {
			return fmt.Sprintf("%d days", days)
		}
		return "1 day"
	}
	s := d.String()
	s = strings.TrimSuffix(s, "0s")
	s = strings.TrimSuffix(s, "0m")
	return s
}

func (e *Evaluator) checkMagnitudes(env *envelope.Envelope, res *envelope.Result) {
	eventType := env.Type()
	for _, rule := range e.magnitudes {
		if rule.EventType != eventType {
			continue
		}
		v, ok := env.Get(rule.Field)
		if !ok || v == nil {
			continue
		}
		if f, ok := asFloat(v); ok && f > rule.Ceiling {
			res.Warnf("%s", rule.Message)
		}
	}
}

// asFloat extracts a numeric value; booleans are not numbers.
func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}
