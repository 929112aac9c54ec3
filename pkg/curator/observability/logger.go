// Package observability provides structured logging, metrics, and tracing
// for the curation pipeline.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds event context to a logger.
// Returns a new logger with event_id, event_type, and source_key fields.
func EnrichLogger(logger *slog.Logger, eventID, eventType, sourceKey string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.String("source_key", sourceKey),
	)
}

// LogEventStart logs the start of a single event's processing.
func LogEventStart(logger *slog.Logger, processingID, sourceKey string) {
	if logger == nil {
		return
	}
	logger.Info("event processing starting",
		slog.String("processing_id", processingID),
		slog.String("source_key", sourceKey),
	)
}

// LogEventClassified logs the outcome of classification.
func LogEventClassified(logger *slog.Logger, eventID, status string, errorCount, warningCount int) {
	if logger == nil {
		return
	}
	logger.Info("event classified",
		slog.String("event_id", eventID),
		slog.String("status", status),
		slog.Int("errors", errorCount),
		slog.Int("warnings", warningCount),
	)
}

// LogStoreWrite logs a successful storage write.
func LogStoreWrite(logger *slog.Logger, store, key, format string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("event stored",
		slog.String("store", store),
		slog.String("key", key),
		slog.String("format", format),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStoreError logs a storage write failure. Write failures are fatal for
// the event, so this is an error rather than a warning.
func LogStoreError(logger *slog.Logger, store, key string, err error) {
	if logger == nil {
		return
	}
	logger.Error("store write failed",
		slog.String("store", store),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// LogFetchError logs a source-object retrieval failure.
func LogFetchError(logger *slog.Logger, sourceKey string, err error) {
	if logger == nil {
		return
	}
	logger.Error("source fetch failed",
		slog.String("source_key", sourceKey),
		slog.String("error", err.Error()),
	)
}

// LogJournalError logs a journal write failure (non-fatal).
func LogJournalError(logger *slog.Logger, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write failed",
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// LogBatchComplete logs completion of a batch run.
func LogBatchComplete(logger *slog.Logger, processed, failed int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("batch completed",
		slog.Int("processed", processed),
		slog.Int("failed", failed),
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
