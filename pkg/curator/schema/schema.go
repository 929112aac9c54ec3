// Package schema holds the per-event-type validation schemas: required and
// optional fields, expected type sets, value constraints, timestamp alias
// tables, and the type-specific normalization strategy.
//
// Definitions are immutable configuration: they are built once at process
// start, registered, and only read afterwards.
package schema

import (
	"fmt"

	"github.com/tripfeed/curator/pkg/curator/coerce"
	"github.com/tripfeed/curator/pkg/curator/envelope"
)

// Constraint is a named pure predicate over a single already-coerced value.
type Constraint struct {
	Name  string
	Check func(v any) bool
}

// Strategy applies type-specific normalization to an envelope, appending
// diagnostics to the result. Strategies are total: they never abort the
// pipeline, only record errors and warnings.
type Strategy interface {
	Normalize(env *envelope.Envelope, res *envelope.Result)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(env *envelope.Envelope, res *envelope.Result)

// Normalize implements Strategy.
func (f StrategyFunc) Normalize(env *envelope.Envelope, res *envelope.Result) {
	f(env, res)
}

// Definition describes one event type.
type Definition struct {
	// Type is the event type tag this definition applies to.
	Type string

	// Required and Optional list the schema's field names. Their order
	// is the order diagnostics are reported in.
	Required []string
	Optional []string

	// Fields maps a field name to its ordered set of acceptable kinds.
	Fields map[string][]coerce.Kind

	// Constraints maps a field name to its value constraint.
	Constraints map[string]Constraint

	// TimestampAliases lists payload fields, in preference order, that can
	// supply the event timestamp when the primary ts field is absent.
	TimestampAliases []string

	// Strategy applies type-specific normalization, if any.
	Strategy Strategy
}

// KindsFor returns the acceptable kinds for a field.
func (d *Definition) KindsFor(field string) ([]coerce.Kind, bool) {
	kinds, ok := d.Fields[field]
	return kinds, ok
}

// FieldOrder returns required fields followed by optional fields; the scan
// order for coercion and constraint checks.
func (d *Definition) FieldOrder() []string {
	order := make([]string, 0, len(d.Required)+len(d.Optional))
	order = append(order, d.Required...)
	order = append(order, d.Optional...)
	return order
}

// Allows reports whether field is declared by the schema (required,
// optional, or typed).
func (d *Definition) Allows(field string) bool {
	for _, f := range d.Required {
		if f == field {
			return true
		}
	}
	for _, f := range d.Optional {
		if f == field {
			return true
		}
	}
	_, typed := d.Fields[field]
	return typed
}

// Evaluate runs the field's constraint, if any, against v.
// A predicate that panics is caught and converted into an error naming the
// field; it must never take down the pipeline.
func (d *Definition) Evaluate(field string, v any) (ok bool, err error) {
	c, exists := d.Constraints[field]
	if !exists {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("error validating constraint %s for field %s: %v", c.Name, field, r)
		}
	}()
	return c.Check(v), nil
}
