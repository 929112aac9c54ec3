package store

import "time"

// JournalEntry records the outcome of processing one event. Entries are
// keyed by event identifier, so reprocessing the same event replaces its
// previous record rather than appending a duplicate.
type JournalEntry struct {
	EventID      string
	EventType    string
	Status       string
	Destination  string
	ErrorCount   int
	WarningCount int
	ProcessedAt  time.Time
}

// Journal tracks processing outcomes for auditing and reprocessing
// detection. Implementations must be safe for concurrent use.
type Journal interface {
	// Record upserts the entry for entry.EventID.
	Record(entry JournalEntry) error
	// Get returns the most recent entry for an event identifier.
	// Returns ErrNotFound when the event has not been journaled.
	Get(eventID string) (JournalEntry, error)
	// Count returns the number of journaled events.
	Count() (int, error)
	// Close releases resources. Further calls return ErrJournalClosed.
	Close() error
}
