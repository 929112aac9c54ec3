// Package envelope defines the event envelope and validation result types
// shared by every stage of the curation pipeline.
//
// An Envelope is the raw event record as received from the intake stage:
// a type tag, a timestamp, a unique identifier, and an open-ended set of
// payload fields. It is owned exclusively by the pipeline invocation that
// receives it and is mutated in place as coercion and normalization proceed.
package envelope

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Universal field names stamped by the intake stage.
const (
	FieldType       = "type"
	FieldTimestamp  = "ts"
	FieldEventID    = "eventId"
	FieldReceivedAt = "receivedAt"
	FieldRequestID  = "requestId"
	FieldMetadata   = "metadata"
	FieldValidation = "validation"
)

// systemFields are reserved by the intake and validation stages and are
// never reported as unexpected payload fields.
var systemFields = map[string]struct{}{
	FieldType:       {},
	FieldTimestamp:  {},
	FieldEventID:    {},
	FieldReceivedAt: {},
	FieldRequestID:  {},
	FieldMetadata:   {},
	FieldValidation: {},
}

// IsSystemField reports whether name is reserved by the pipeline itself.
func IsSystemField(name string) bool {
	_, ok := systemFields[name]
	return ok
}

// Envelope is a single event record flowing through the pipeline.
type Envelope struct {
	fields map[string]any
}

// New creates an Envelope over the given fields.
// The map is adopted, not copied: the envelope owns it from here on.
func New(fields map[string]any) *Envelope {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Envelope{fields: fields}
}

// FromJSON parses raw bytes into an Envelope.
// Payloads that are not a JSON object are rejected; the caller classifies
// such input as corrupted.
func FromJSON(data []byte) (*Envelope, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	// A JSON null unmarshals successfully into a nil map.
	if fields == nil {
		return nil, fmt.Errorf("payload is not a JSON object: null")
	}
	return New(fields), nil
}

// Get returns the value for name and whether it is present.
func (e *Envelope) Get(name string) (any, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// Set stores a value for name, replacing any previous value.
func (e *Envelope) Set(name string, v any) {
	e.fields[name] = v
}

// Has reports whether name is present.
func (e *Envelope) Has(name string) bool {
	_, ok := e.fields[name]
	return ok
}

// Type returns the event type tag, or "" when absent.
func (e *Envelope) Type() string {
	return e.stringField(FieldType)
}

// Timestamp returns the event timestamp field, or "" when absent.
func (e *Envelope) Timestamp() string {
	return e.stringField(FieldTimestamp)
}

// EventID returns the unique event identifier, or "" when absent.
func (e *Envelope) EventID() string {
	return e.stringField(FieldEventID)
}

// RequestID returns the originating request identifier, or "" when absent.
func (e *Envelope) RequestID() string {
	return e.stringField(FieldRequestID)
}

// ReceivedAt returns the intake receipt timestamp, or "" when absent.
func (e *Envelope) ReceivedAt() string {
	return e.stringField(FieldReceivedAt)
}

// Metadata returns the intake metadata block, or nil when absent.
func (e *Envelope) Metadata() map[string]any {
	if m, ok := e.fields[FieldMetadata].(map[string]any); ok {
		return m
	}
	return nil
}

// stringField stringifies scalar values the way the intake stage does:
// a numeric type tag is still a usable lookup key.
func (e *Envelope) stringField(name string) string {
	v, ok := e.fields[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Fields returns the underlying field map.
// The envelope retains ownership; callers must not share it across events.
func (e *Envelope) Fields() map[string]any {
	return e.fields
}

// FieldNames returns all field names in sorted order, so scans over the
// open-ended payload produce deterministic diagnostics.
func (e *Envelope) FieldNames() []string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Payload returns a copy of all non-system fields: the event's own data,
// as projected into the curated record's payload blob.
func (e *Envelope) Payload() map[string]any {
	payload := make(map[string]any, len(e.fields))
	for name, v := range e.fields {
		if IsSystemField(name) {
			continue
		}
		payload[name] = v
	}
	return payload
}

// MarshalJSON implements json.Marshaler.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.fields)
}
