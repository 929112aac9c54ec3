package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/tripfeed/curator/pkg/curator/envelope"
)

// Format markers recorded in object metadata so consumers can discover
// how a record was encoded.
const (
	FormatParquet = "parquet"
	FormatJSON    = "json"
)

// Destination identifies where a classified event was persisted.
type Destination struct {
	// Store names the logical destination: "curated" or "quarantine".
	Store string
	// Key is the partitioned object key the record was written to.
	Key string
	// Format is the encoding actually used.
	Format string
}

// Router persists classified events. Valid events become curated parquet
// records (JSON when the columnar encoder fails); invalid and corrupted
// events are quarantined as JSON annotated with their diagnostics.
type Router struct {
	curated    ObjectStore
	quarantine ObjectStore
	name       string
	now        func() time.Time
	encode     func(CuratedRecord) ([]byte, error)
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithProcessorName sets the processor identity stamped into diagnostics
// blocks. Default: "curator".
func WithProcessorName(name string) RouterOption {
	return func(r *Router) {
		if name != "" {
			r.name = name
		}
	}
}

// WithRouterClock overrides the time source, for tests.
func WithRouterClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// WithCuratedEncoder replaces the columnar encoder. Tests use this to
// force the JSON fallback path.
func WithCuratedEncoder(encode func(CuratedRecord) ([]byte, error)) RouterOption {
	return func(r *Router) {
		if encode != nil {
			r.encode = encode
		}
	}
}

// NewRouter creates a Router over the curated and quarantine stores.
func NewRouter(curated, quarantine ObjectStore, opts ...RouterOption) *Router {
	r := &Router{
		curated:    curated,
		quarantine: quarantine,
		name:       "curator",
		now:        time.Now,
		encode:     MarshalParquet,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store persists a classified event and returns where it landed.
// sourceKey is the source object's key, used to keep the destination in
// the same date partition; pass "" when unknown. Writes are idempotent by
// event identifier: reprocessing overwrites the same destination object.
func (r *Router) Store(ctx context.Context, res *envelope.Result, sourceKey string) (Destination, error) {
	env := res.Envelope
	eventType := orUnknown(env.Type())
	eventID := orUnknown(env.EventID())
	now := r.now().UTC()
	part := NewPartition(sourceKey, eventType, eventID, now)

	if res.Status == envelope.StatusValid {
		return r.storeCurated(ctx, res, part, sourceKey, now)
	}
	return r.storeQuarantine(ctx, res, part, now)
}

// storeCurated writes the flattened columnar record, falling back to a
// JSON rendition of the same record when the columnar encoder fails. The
// fallback is transparent: same logical record, alternate representation,
// discoverable through the format metadata marker.
func (r *Router) storeCurated(ctx context.Context, res *envelope.Result, part Partition, sourceKey string, now time.Time) (Destination, error) {
	validation := map[string]any{
		"status":      string(res.Status),
		"validatedAt": now.Truncate(time.Second).Format(time.RFC3339),
		"validatedBy": r.name,
		"errors":      diagnostics(res.Errors),
		"warnings":    diagnostics(res.Warnings),
		"originalKey": sourceKey,
	}

	rec, err := NewCuratedRecord(res.Envelope, validation, now)
	if err != nil {
		return Destination{}, &WriteError{Store: "curated", Key: part.Key(FormatParquet), Err: err}
	}

	format := FormatParquet
	contentType := "application/octet-stream"
	data, err := r.encode(rec)
	if err != nil {
		// Columnar writer unavailable; same record as JSON instead.
		format = FormatJSON
		contentType = "application/json"
		data, err = json.Marshal(rec)
		if err != nil {
			return Destination{}, &WriteError{Store: "curated", Key: part.Key(FormatJSON), Err: err}
		}
	}

	key := part.Key(format)
	obj := Object{
		Key:         key,
		Data:        data,
		ContentType: contentType,
		Metadata: map[string]string{
			"validation-status": string(envelope.StatusValid),
			"original-key":      sourceKey,
			"event-type":        part.EventType,
			"format":            format,
		},
	}
	if err := r.curated.Put(ctx, obj); err != nil {
		return Destination{}, &WriteError{Store: "curated", Key: key, Err: err}
	}
	return Destination{Store: "curated", Key: key, Format: format}, nil
}

// storeQuarantine writes the full envelope plus a diagnostics block.
func (r *Router) storeQuarantine(ctx context.Context, res *envelope.Result, part Partition, now time.Time) (Destination, error) {
	doc := make(map[string]any, len(res.Envelope.Fields())+1)
	for name, v := range res.Envelope.Fields() {
		doc[name] = v
	}
	doc["validationResult"] = map[string]any{
		"status":      string(res.Status),
		"errors":      diagnostics(res.Errors),
		"warnings":    diagnostics(res.Warnings),
		"processedAt": now.Truncate(time.Second).Format(time.RFC3339),
		"processedBy": r.name,
	}

	key := part.Key(FormatJSON)
	data, err := json.Marshal(doc)
	if err != nil {
		return Destination{}, &WriteError{Store: "quarantine", Key: key, Err: err}
	}

	obj := Object{
		Key:         key,
		Data:        data,
		ContentType: "application/json",
		Metadata: map[string]string{
			"validation-status": string(res.Status),
			"error-count":       strconv.Itoa(len(res.Errors)),
			"warning-count":     strconv.Itoa(len(res.Warnings)),
			"event-type":        part.EventType,
		},
	}
	if err := r.quarantine.Put(ctx, obj); err != nil {
		return Destination{}, &WriteError{Store: "quarantine", Key: key, Err: err}
	}
	return Destination{Store: "quarantine", Key: key, Format: FormatJSON}, nil
}

// diagnostics renders a diagnostic list with an empty slice instead of
// nil, so stored JSON always carries the field.
func diagnostics(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
