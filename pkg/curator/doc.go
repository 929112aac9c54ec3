/*
Package curator validates, normalizes and routes heterogeneous business
events against declarative schemas.

# Overview

curator ingests loosely structured JSON events (bookings, payments,
cancellations, flight operations, user signups), classifies each one as
valid, invalid or corrupted, and routes it accordingly: valid events are
flattened into columnar curated records, everything else is quarantined
as JSON alongside the full diagnostics that explain the rejection.

Classification accumulates every problem it finds rather than stopping at
the first one, so a quarantined event can be fixed in a single pass:
  - Required fields and type coercion (a "numeric string" counts as a number)
  - Field constraints (positive amounts, ISO currency codes, email shape)
  - Timestamp normalization to UTC ISO 8601 with Z suffix
  - Per-type normalization strategies (currency, flight status, aircraft)
  - Business rules that warn without rejecting (stale events, outlier amounts)

# Basic Usage

Build a processor over a schema registry and two object stores:

	registry := schema.Builtin()

	fs := afero.NewOsFs()
	source := store.NewFsStore(fs, "/data/raw")
	curated := store.NewFsStore(fs, "/data/curated")
	quarantine := store.NewFsStore(fs, "/data/quarantine")

	router := store.NewRouter(curated, quarantine,
	    store.WithProcessorName("tripfeed-curator"))

	proc := curator.New(registry, source, router,
	    curator.WithLogger(slog.Default()),
	    curator.WithMaxConcurrency(16))

	out := proc.Process(ctx, "year=2025/month=01/day=15/evt-001.json")
	if out.Err != nil {
	    log.Fatal(out.Err) // I/O failure, key can be retried
	}
	fmt.Println(out.Status, out.Destination.Key)

Process never returns an error for rejected events: invalid and corrupted
are successful outcomes that landed in quarantine. Outcome.Err is reserved
for fetch and store failures where nothing was persisted.

# Batches

ProcessBatch fans keys out across a bounded worker pool and returns
outcomes index-aligned with the input:

	outcomes := proc.ProcessBatch(ctx, keys)
	for _, out := range outcomes {
	    if out.Err != nil {
	        retry = append(retry, out.Key)
	    }
	}

# Custom Schemas

Register additional event types programmatically or from a YAML overlay:

	registry.MustRegister(&schema.Definition{
	    Type:     "hotels.room.booked",
	    Required: []string{"roomId", "nights", "ts"},
	    Fields: map[string][]coerce.Kind{
	        "roomId": {coerce.String},
	        "nights": {coerce.Int},
	    },
	    Constraints: map[string]schema.Constraint{
	        "nights": schema.Positive(),
	    },
	})

	err := schema.LoadOverlayFile(registry, "schemas.yaml")

# Configuration

FromSettings wires a complete processor from a loaded config file: the
store roots, an optional schema overlay, an optional SQLite journal, and
a single processor name applied to both logs and validation blocks.

	cfg, err := config.FromFile("curator.yaml")
	proc, err := curator.FromSettings(afero.NewOsFs(), config.Settings(cfg))
	defer proc.Close()

# Journaling

Track processing outcomes for auditing and reprocessing detection:

	journal, err := store.NewSQLiteJournal("./outcomes.db")
	defer journal.Close()

	proc := curator.New(registry, source, router,
	    curator.WithJournal(journal))

Entries are keyed by event identifier, so reprocessing replaces the
previous record instead of appending a duplicate.

# Observability

Logs carry structured fields (processing_id, event_id, event_type,
status, error_count, warning_count). OpenTelemetry metrics:
curator.events.processed, curator.classify.latency_ms,
curator.store.writes, etc. Tracing produces a curator.event span with
curator.stage events for each classification stage:

	proc := curator.New(registry, source, router,
	    curator.WithMetrics(observability.NewMetricsRecorder()),
	    curator.WithSpanManager(observability.NewSpanManager()))

# Thread Safety

  - Processor IS safe for concurrent use
  - Registry IS safe for concurrent use (register and lookup)
  - Journal implementations are safe for concurrent use
  - Envelope and Result are NOT safe for concurrent mutation

# Subpackages

  - envelope: event wrapper and classification result types
  - schema: schema registry, built-in definitions, constraints, YAML overlay
  - coerce: lenient type coercion for loosely typed payloads
  - normalize: timestamp, currency, status and aircraft canonicalization
  - rules: business-rule warnings (freshness, magnitude outliers)
  - classify: the classification pipeline
  - store: object stores, partitioning, routing, curated encoding, journal
  - config: file-based configuration
  - observability: logging, metrics, and tracing helpers
*/
package curator
