package curator

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/tripfeed/curator/pkg/curator/config"
	"github.com/tripfeed/curator/pkg/curator/schema"
	"github.com/tripfeed/curator/pkg/curator/store"
)

// FromSettings builds a fully wired Processor from loaded configuration:
// filesystem-backed source, curated and quarantine stores under the
// configured roots, the built-in schema registry plus any overlay file,
// and a SQLite journal when a path is set. The processor name from the
// settings is applied to both the processor and the router, so log
// records and validation blocks agree on who processed the event.
//
// Additional options are applied after the settings and may override
// them. When a journal path is configured the journal is owned by the
// returned processor; release it with Close.
func FromSettings(fsys afero.Fs, s config.ProcessorSettings, opts ...Option) (*Processor, error) {
	if s.SourceRoot == "" || s.CuratedRoot == "" || s.QuarantineRoot == "" {
		return nil, fmt.Errorf("processor settings: source, curated and quarantine roots are required")
	}

	registry := schema.Builtin()
	if s.SchemaOverlay != "" {
		data, err := afero.ReadFile(fsys, s.SchemaOverlay)
		if err != nil {
			return nil, fmt.Errorf("read schema overlay: %w", err)
		}
		if err := schema.LoadOverlay(registry, data); err != nil {
			return nil, err
		}
	}

	source := store.NewFsStore(fsys, s.SourceRoot)
	router := store.NewRouter(
		store.NewFsStore(fsys, s.CuratedRoot),
		store.NewFsStore(fsys, s.QuarantineRoot),
		store.WithProcessorName(s.ProcessorName),
	)

	all := []Option{
		WithProcessorName(s.ProcessorName),
		WithIOTimeout(s.IOTimeout),
		WithMaxConcurrency(s.MaxConcurrency),
	}
	if s.JournalPath != "" {
		journal, err := store.NewSQLiteJournal(s.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		all = append(all, WithJournal(journal))
	}
	all = append(all, opts...)

	return New(registry, source, router, all...), nil
}

// Close releases resources owned by the processor, currently the outcome
// journal when one is configured. Safe to call on a processor without a
// journal.
func (p *Processor) Close() error {
	if p.journal == nil {
		return nil
	}
	return p.journal.Close()
}
