package config

import "time"

// Defaults applied when a setting is absent from the loaded config.
const (
	DefaultProcessorName  = "curator"
	DefaultIOTimeout      = 30 * time.Second
	DefaultMaxConcurrency = 8
)

// ProcessorSettings holds the operational knobs of an event processor.
type ProcessorSettings struct {
	// ProcessorName is the identity stamped into validation blocks.
	ProcessorName string
	// SourceRoot is the root directory or prefix of the raw event store.
	SourceRoot string
	// CuratedRoot is the destination root for valid events.
	CuratedRoot string
	// QuarantineRoot is the destination root for rejected events.
	QuarantineRoot string
	// JournalPath is the SQLite journal file; empty disables journaling.
	JournalPath string
	// SchemaOverlay is an optional YAML file of extra schema definitions.
	SchemaOverlay string
	// IOTimeout bounds each fetch and store call.
	IOTimeout time.Duration
	// MaxConcurrency bounds parallel event processing in batches.
	MaxConcurrency int
}

// Settings extracts processor settings from the "processor" section of
// the config, applying defaults for anything absent.
func Settings(c Config) ProcessorSettings {
	p := c.Section("processor")
	return ProcessorSettings{
		ProcessorName:  p.String("name", DefaultProcessorName),
		SourceRoot:     p.String("source_root", ""),
		CuratedRoot:    p.String("curated_root", ""),
		QuarantineRoot: p.String("quarantine_root", ""),
		JournalPath:    p.String("journal_path", ""),
		SchemaOverlay:  p.String("schema_overlay", ""),
		IOTimeout:      p.Duration("io_timeout", DefaultIOTimeout),
		MaxConcurrency: p.Int("max_concurrency", DefaultMaxConcurrency),
	}
}
