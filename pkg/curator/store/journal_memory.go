package store

import "sync"

// MemoryJournal is an in-memory Journal for development and tests.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries map[string]JournalEntry
	closed  bool
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[string]JournalEntry)}
}

// Record implements Journal.
func (j *MemoryJournal) Record(entry JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}
	j.entries[entry.EventID] = entry
	return nil
}

// Get implements Journal.
func (j *MemoryJournal) Get(eventID string) (JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return JournalEntry{}, ErrJournalClosed
	}
	entry, ok := j.entries[eventID]
	if !ok {
		return JournalEntry{}, ErrNotFound
	}
	return entry, nil
}

// Count implements Journal.
func (j *MemoryJournal) Count() (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return 0, ErrJournalClosed
	}
	return len(j.entries), nil
}

// Close implements Journal.
func (j *MemoryJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.closed = true
	return nil
}
