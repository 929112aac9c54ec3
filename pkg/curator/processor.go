package curator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tripfeed/curator/pkg/curator/classify"
	"github.com/tripfeed/curator/pkg/curator/envelope"
	"github.com/tripfeed/curator/pkg/curator/observability"
	"github.com/tripfeed/curator/pkg/curator/rules"
	"github.com/tripfeed/curator/pkg/curator/schema"
	"github.com/tripfeed/curator/pkg/curator/store"
)

// Outcome summarizes the processing of a single source object.
type Outcome struct {
	// Key is the source object key that was processed.
	Key string
	// ProcessingID is the unique identifier assigned to this attempt.
	ProcessingID string
	// EventID is the event identifier, when the payload carried one.
	EventID string
	// EventType is the declared event type, when present.
	EventType string
	// Status is the classification verdict: valid, invalid or corrupted.
	Status envelope.Status
	// Destination records where the event was persisted.
	Destination store.Destination
	// Errors and Warnings are the accumulated diagnostics.
	Errors   []string
	Warnings []string
	// Err is set when processing itself failed (fetch or store I/O);
	// the event was NOT persisted and the key can be retried.
	Err error
}

// Processor fetches raw events from a source store, classifies them
// against registered schemas and routes them to curated or quarantine
// storage. It is safe for concurrent use.
type Processor struct {
	classifier     *classify.Classifier
	source         store.ObjectStore
	router         *store.Router
	journal        store.Journal
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	ioTimeout      time.Duration
	maxConcurrency int
	name           string
}

// New creates a Processor over the given schema registry, source store
// and router. Options configure observability, journaling and limits.
func New(registry *schema.Registry, source store.ObjectStore, router *store.Router, opts ...Option) *Processor {
	p := &Processor{
		source:         source,
		router:         router,
		logger:         slog.Default(),
		metrics:        observability.NoopMetrics{},
		spans:          observability.NoopSpanManager{},
		ioTimeout:      30 * time.Second,
		maxConcurrency: 8,
		name:           "curator",
	}

	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger != nil {
		p.logger = cfg.logger
	}
	if cfg.metrics != nil {
		p.metrics = cfg.metrics
	}
	if cfg.spans != nil {
		p.spans = cfg.spans
	}
	if cfg.journal != nil {
		p.journal = cfg.journal
	}
	if cfg.ioTimeout > 0 {
		p.ioTimeout = cfg.ioTimeout
	}
	if cfg.maxConcurrency > 0 {
		p.maxConcurrency = cfg.maxConcurrency
	}
	if cfg.name != "" {
		p.name = cfg.name
	}
	ruleEval := cfg.rules
	if ruleEval == nil {
		ruleEval = rules.NewEvaluator()
	}

	p.logger = p.logger.With(slog.String("processor", p.name))
	p.classifier = classify.New(registry, classify.WithRules(ruleEval))
	return p
}

// Process fetches, classifies and routes the event at the given source
// key. I/O failures surface in Outcome.Err; classification verdicts
// (including invalid and corrupted) are successful outcomes that were
// persisted to their destination.
func (p *Processor) Process(ctx context.Context, key string) Outcome {
	processingID := uuid.NewString()
	out := Outcome{Key: key, ProcessingID: processingID}

	ctx, span := p.spans.StartEventSpan(ctx, key, processingID)
	defer func() { p.spans.EndSpanWithError(span, out.Err) }()

	observability.LogEventStart(p.logger, processingID, key)

	obj, err := p.fetch(ctx, key)
	if err != nil {
		observability.LogFetchError(p.logger, key, err)
		out.Err = err
		return out
	}

	started := time.Now()
	res := p.classifier.ClassifyBytes(ctx, obj.Data)
	classifyDur := time.Since(started)

	out.Status = res.Status
	out.EventID = res.Envelope.EventID()
	out.EventType = res.Envelope.Type()
	out.Errors = res.Errors
	out.Warnings = res.Warnings

	logger := observability.EnrichLogger(p.logger, out.EventID, out.EventType, key)
	observability.LogEventClassified(logger, out.EventID, string(res.Status), len(res.Errors), len(res.Warnings))
	p.metrics.RecordClassification(ctx, out.EventType, string(res.Status), classifyDur, len(res.Errors), len(res.Warnings))

	dest, err := p.persist(ctx, res, key, logger)
	if err != nil {
		out.Err = err
		return out
	}
	out.Destination = dest

	p.record(logger, out)
	return out
}

// fetch retrieves the source object under the configured I/O deadline.
func (p *Processor) fetch(ctx context.Context, key string) (store.Object, error) {
	ctx, cancel := context.WithTimeout(ctx, p.ioTimeout)
	defer cancel()
	return p.source.Get(ctx, key)
}

// persist routes the classified result under the configured I/O deadline.
func (p *Processor) persist(ctx context.Context, res *envelope.Result, key string, logger *slog.Logger) (store.Destination, error) {
	ctx, cancel := context.WithTimeout(ctx, p.ioTimeout)
	defer cancel()

	stop := observability.TimedOperation()
	dest, err := p.router.Store(ctx, res, key)
	elapsed := stop()
	if err != nil {
		name, failedKey := "unknown", key
		var werr *store.WriteError
		if errors.As(err, &werr) {
			name, failedKey = werr.Store, werr.Key
		}
		observability.LogStoreError(logger, name, failedKey, err)
		p.metrics.RecordStoreWrite(ctx, name, "", time.Duration(elapsed*float64(time.Millisecond)), err)
		return store.Destination{}, err
	}
	observability.LogStoreWrite(logger, dest.Store, dest.Key, dest.Format, elapsed)
	p.metrics.RecordStoreWrite(ctx, dest.Store, dest.Format, time.Duration(elapsed*float64(time.Millisecond)), nil)
	return dest, nil
}

// record journals the outcome. Journal failures are logged and swallowed:
// the event is already persisted and auditing must not fail processing.
func (p *Processor) record(logger *slog.Logger, out Outcome) {
	if p.journal == nil {
		return
	}
	err := p.journal.Record(store.JournalEntry{
		EventID:      out.EventID,
		EventType:    out.EventType,
		Status:       string(out.Status),
		Destination:  out.Destination.Key,
		ErrorCount:   len(out.Errors),
		WarningCount: len(out.Warnings),
		ProcessedAt:  time.Now().UTC(),
	})
	if err != nil {
		observability.LogJournalError(logger, out.EventID, err)
	}
}
