package curator

import (
	"log/slog"
	"time"

	"github.com/tripfeed/curator/pkg/curator/observability"
	"github.com/tripfeed/curator/pkg/curator/rules"
	"github.com/tripfeed/curator/pkg/curator/store"
)

// options collects processor configuration gathered from Option values.
type options struct {
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	journal        store.Journal
	rules          *rules.Evaluator
	ioTimeout      time.Duration
	maxConcurrency int
	name           string
}

// Option configures a Processor.
type Option func(*options)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *options) { o.metrics = m }
}

// WithSpanManager sets the span manager. Default: no-op.
func WithSpanManager(s observability.SpanManager) Option {
	return func(o *options) { o.spans = s }
}

// WithJournal enables outcome journaling. Default: disabled.
func WithJournal(j store.Journal) Option {
	return func(o *options) { o.journal = j }
}

// WithRules replaces the business-rule evaluator. Default: the built-in
// evaluator with its standard freshness and magnitude checks.
func WithRules(e *rules.Evaluator) Option {
	return func(o *options) { o.rules = e }
}

// WithIOTimeout bounds each fetch and store call. Default: 30s.
func WithIOTimeout(d time.Duration) Option {
	return func(o *options) { o.ioTimeout = d }
}

// WithMaxConcurrency bounds parallel event processing in ProcessBatch.
// Default: 8.
func WithMaxConcurrency(n int) Option {
	return func(o *options) { o.maxConcurrency = n }
}

// WithProcessorName sets the processor identity attached to log records.
// Default: "curator". The name stamped into validation blocks belongs to
// the router (store.WithProcessorName); FromSettings applies one name to
// both.
func WithProcessorName(name string) Option {
	return func(o *options) { o.name = name }
}
