// Package classify orchestrates the validation pipeline for a single
// event: required-field checks, timestamp normalization, schema-driven
// coercion and constraints, type-specific normalization, unexpected-field
// scanning, and business rules, in that order, always to completion.
//
// Stages accumulate diagnostics rather than aborting early, so one
// invocation reports the complete set of problems with an event. The only
// short-circuits are an unparseable payload (corrupted) and a missing
// universal field (nothing reliable to validate against).
package classify

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tripfeed/curator/pkg/curator/coerce"
	"github.com/tripfeed/curator/pkg/curator/envelope"
	"github.com/tripfeed/curator/pkg/curator/normalize"
	"github.com/tripfeed/curator/pkg/curator/observability"
	"github.com/tripfeed/curator/pkg/curator/rules"
	"github.com/tripfeed/curator/pkg/curator/schema"
)

// universalFields must be present on every event regardless of type.
var universalFields = []string{
	envelope.FieldType,
	envelope.FieldTimestamp,
	envelope.FieldEventID,
}

// Classifier runs the validation pipeline. It is stateless per event and
// safe for concurrent use: the registry is read-only and every envelope is
// owned by a single invocation.
type Classifier struct {
	registry *schema.Registry
	rules    *rules.Evaluator
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules overrides the business rule evaluator.
func WithRules(e *rules.Evaluator) Option {
	return func(c *Classifier) {
		if e != nil {
			c.rules = e
		}
	}
}

// New creates a Classifier over the given schema registry.
func New(registry *schema.Registry, opts ...Option) *Classifier {
	c := &Classifier{
		registry: registry,
		rules:    rules.NewEvaluator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifyBytes parses raw payload bytes and classifies the result.
// Payloads that cannot be parsed as a structured record are terminal:
// status corrupted, no further stages run.
func (c *Classifier) ClassifyBytes(ctx context.Context, raw []byte) *envelope.Result {
	env, err := envelope.FromJSON(raw)
	if err != nil {
		res := envelope.NewResult(envelope.New(nil))
		res.Status = envelope.StatusCorrupted
		res.Errors = append(res.Errors, err.Error())
		c.stage(ctx, "corrupted")
		return res
	}
	return c.Classify(ctx, env)
}

// Classify runs the full pipeline against an envelope, mutating it in
// place, and returns the result with the envelope attached.
func (c *Classifier) Classify(ctx context.Context, env *envelope.Envelope) *envelope.Result {
	res := envelope.NewResult(env)

	c.resolveTimestampAlias(env, res)

	for _, field := range universalFields {
		if !env.Has(field) {
			res.Errorf("missing required field: %s", field)
		}
	}
	c.stage(ctx, "required-fields-checked")
	if len(res.Errors) > 0 {
		// Nothing reliable to validate against; skip the
		// schema-specific stages entirely.
		res.Finalize()
		return res
	}

	c.normalizeEventTimestamp(env, res)
	c.stage(ctx, "timestamp-normalized")

	def, known := c.registry.Get(env.Type())
	c.stage(ctx, "schema-resolved")
	if !known {
		res.Warnf("unknown event type: %s", env.Type())
	} else {
		c.applySchema(ctx, env, res, def)
	}

	c.rules.Evaluate(env, res)
	c.stage(ctx, "business-rules-applied")

	res.Finalize()
	return res
}

// resolveTimestampAlias consults the schema's ordered alias list when the
// primary timestamp field is absent. Adopting an alias is recorded as a
// warning so the provenance of the timestamp stays visible. There is
// deliberately no fallback to the processing clock: a manufactured
// timestamp would distort the freshness rules.
func (c *Classifier) resolveTimestampAlias(env *envelope.Envelope, res *envelope.Result) {
	if env.Has(envelope.FieldTimestamp) {
		return
	}
	def, ok := c.registry.Get(env.Type())
	if !ok {
		return
	}
	for _, alias := range def.TimestampAliases {
		if alias == envelope.FieldTimestamp {
			continue
		}
		v, ok := env.Get(alias)
		if !ok || v == nil {
			continue
		}
		env.Set(envelope.FieldTimestamp, v)
		res.Warnf("ts missing, derived from %s", alias)
		return
	}
}

// normalizeEventTimestamp canonicalizes the universal ts field.
func (c *Classifier) normalizeEventTimestamp(env *envelope.Envelope, res *envelope.Result) {
	normalized, err := normalize.Timestamp(env.Timestamp())
	if err != nil {
		res.Errorf("ts: %v", err)
		return
	}
	env.Set(envelope.FieldTimestamp, normalized)
}

// applySchema runs the schema-specific stages: per-type required fields,
// coercion, constraints, the type strategy, and the unexpected-field scan.
func (c *Classifier) applySchema(ctx context.Context, env *envelope.Envelope, res *envelope.Result, def *schema.Definition) {
	for _, field := range def.Required {
		if !env.Has(field) {
			res.Errorf("missing required field for %s: %s", def.Type, field)
		}
	}

	for _, field := range def.FieldOrder() {
		v, present := env.Get(field)
		if !present {
			continue
		}
		kinds, typed := def.KindsFor(field)
		if !typed {
			continue
		}
		coerced, ok := coerce.Value(v, kinds...)
		if !ok {
			res.Errorf("field %s must be of type %s", field, coerce.Names(kinds))
			continue
		}
		env.Set(field, coerced)
	}
	c.stage(ctx, "types-coerced")

	for _, field := range def.FieldOrder() {
		v, present := env.Get(field)
		if !present {
			continue
		}
		passed, err := def.Evaluate(field, v)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		if !passed {
			res.Errorf("field %s violates constraint %s", field, def.Constraints[field].Name)
		}
	}

	if def.Strategy != nil {
		def.Strategy.Normalize(env, res)
	}
	c.stage(ctx, "normalized")

	for _, name := range env.FieldNames() {
		if envelope.IsSystemField(name) || def.Allows(name) {
			continue
		}
		res.Warnf("unexpected field for %s: %s", def.Type, name)
	}
	c.stage(ctx, "unexpected-fields-scanned")
}

// stage marks a pipeline stage transition on the active span, if any.
func (c *Classifier) stage(ctx context.Context, name string) {
	observability.AddSpanEvent(ctx, "curator.stage", attribute.String("stage", name))
}
