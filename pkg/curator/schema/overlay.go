package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tripfeed/curator/pkg/curator/coerce"
)

// Overlay files let deployments register event types beyond the built-ins
// without a code change. Format (YAML, one document, type tag as key):
//
//	promo_redeemed:
//	  required: [promoId, userId, amount]
//	  optional: [campaign]
//	  fields:
//	    promoId: [string]
//	    userId: [string]
//	    amount: [int, float]
//	    campaign: [string]
//	  constraints:
//	    amount: positive
//	    promoId: non_empty
//	  timestamp_aliases: [redeemedAt]
//
// Overlay definitions carry no strategy; type-specific normalization stays
// a code-level concern.

type overlayDefinition struct {
	Required         []string            `yaml:"required"`
	Optional         []string            `yaml:"optional"`
	Fields           map[string][]string `yaml:"fields"`
	Constraints      map[string]string   `yaml:"constraints"`
	TimestampAliases []string            `yaml:"timestamp_aliases"`
}

// kindNames maps overlay type names to kinds.
var kindNames = map[string]coerce.Kind{
	"string":      coerce.String,
	"int":         coerce.Int,
	"float":       coerce.Float,
	"bool":        coerce.Bool,
	"string_list": coerce.StringList,
	"map":         coerce.Map,
}

// constraintNames maps overlay constraint names to predicates.
var constraintNames = map[string]func() Constraint{
	"positive":      Positive,
	"non_negative":  NonNegative,
	"non_empty":     NonEmpty,
	"email":         Email,
	"iso_date":      ISODate,
	"currency_code": CurrencyCode,
}

// LoadOverlayFile reads an overlay file and registers its definitions.
func LoadOverlayFile(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read overlay file: %w", err)
	}
	return LoadOverlay(r, data)
}

// LoadOverlay parses overlay YAML and registers its definitions.
func LoadOverlay(r *Registry, data []byte) error {
	var raw map[string]overlayDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse overlay: %w", err)
	}

	for eventType, od := range raw {
		def, err := od.toDefinition(eventType)
		if err != nil {
			return err
		}
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func (od overlayDefinition) toDefinition(eventType string) (*Definition, error) {
	def := &Definition{
		Type:             eventType,
		Required:         od.Required,
		Optional:         od.Optional,
		Fields:           make(map[string][]coerce.Kind, len(od.Fields)),
		Constraints:      make(map[string]Constraint, len(od.Constraints)),
		TimestampAliases: od.TimestampAliases,
	}

	for field, names := range od.Fields {
		kinds := make([]coerce.Kind, 0, len(names))
		for _, name := range names {
			kind, ok := kindNames[name]
			if !ok {
				return nil, fmt.Errorf("overlay %s: unknown kind %q for field %s", eventType, name, field)
			}
			kinds = append(kinds, kind)
		}
		def.Fields[field] = kinds
	}

	for field, name := range od.Constraints {
		ctor, ok := constraintNames[name]
		if !ok {
			return nil, fmt.Errorf("overlay %s: unknown constraint %q for field %s", eventType, name, field)
		}
		def.Constraints[field] = ctor()
	}

	return def, nil
}
