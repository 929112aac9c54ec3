package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records curation pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordClassification records one event's classification outcome.
	RecordClassification(ctx context.Context, eventType, status string, duration time.Duration, errors, warnings int)

	// RecordStoreWrite records a storage write with its destination and format.
	RecordStoreWrite(ctx context.Context, store, format string, duration time.Duration, err error)

	// RecordBatch records a batch run.
	RecordBatch(ctx context.Context, size int, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsProcessed metric.Int64Counter
	eventErrors     metric.Int64Counter
	eventWarnings   metric.Int64Counter
	classifyLatency metric.Float64Histogram
	storeWrites     metric.Int64Counter
	storeErrors     metric.Int64Counter
	storeLatency    metric.Float64Histogram
	batchSize       metric.Int64Histogram
	batchLatency    metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("curator")

	eventsProcessed, err := meter.Int64Counter("curator.events.processed",
		metric.WithDescription("Number of events classified"),
	)
	if err != nil {
		return nil, err
	}

	eventErrors, err := meter.Int64Counter("curator.events.errors",
		metric.WithDescription("Number of hard validation errors recorded"),
	)
	if err != nil {
		return nil, err
	}

	eventWarnings, err := meter.Int64Counter("curator.events.warnings",
		metric.WithDescription("Number of soft validation warnings recorded"),
	)
	if err != nil {
		return nil, err
	}

	classifyLatency, err := meter.Float64Histogram("curator.classify.latency_ms",
		metric.WithDescription("Classification latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	storeWrites, err := meter.Int64Counter("curator.store.writes",
		metric.WithDescription("Number of storage writes"),
	)
	if err != nil {
		return nil, err
	}

	storeErrors, err := meter.Int64Counter("curator.store.errors",
		metric.WithDescription("Number of storage write failures"),
	)
	if err != nil {
		return nil, err
	}

	storeLatency, err := meter.Float64Histogram("curator.store.latency_ms",
		metric.WithDescription("Storage write latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	batchSize, err := meter.Int64Histogram("curator.batch.size",
		metric.WithDescription("Number of source objects per batch"),
	)
	if err != nil {
		return nil, err
	}

	batchLatency, err := meter.Float64Histogram("curator.batch.latency_ms",
		metric.WithDescription("Batch run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsProcessed: eventsProcessed,
		eventErrors:     eventErrors,
		eventWarnings:   eventWarnings,
		classifyLatency: classifyLatency,
		storeWrites:     storeWrites,
		storeErrors:     storeErrors,
		storeLatency:    storeLatency,
		batchSize:       batchSize,
		batchLatency:    batchLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordClassification records one event's classification outcome.
func (m *otelMetrics) RecordClassification(ctx context.Context, eventType, status string, duration time.Duration, errors, warnings int) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
		attribute.String("status", status),
	}

	m.eventsProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.classifyLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if errors > 0 {
		m.eventErrors.Add(ctx, int64(errors), metric.WithAttributes(attrs...))
	}
	if warnings > 0 {
		m.eventWarnings.Add(ctx, int64(warnings), metric.WithAttributes(attrs...))
	}
}

// RecordStoreWrite records a storage write.
func (m *otelMetrics) RecordStoreWrite(ctx context.Context, store, format string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("store", store),
		attribute.String("format", format),
	}

	m.storeWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.storeLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.storeErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordBatch records a batch run.
func (m *otelMetrics) RecordBatch(ctx context.Context, size int, duration time.Duration) {
	m.batchSize.Record(ctx, int64(size))
	m.batchLatency.Record(ctx, float64(duration.Milliseconds()))
}
