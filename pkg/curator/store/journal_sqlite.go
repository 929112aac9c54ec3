package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteJournal persists processing outcomes to SQLite.
// It is suitable for single-process production use.
type SQLiteJournal struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteJournal opens (creating if needed) a journal database.
// The path should be a file path (e.g., "./outcomes.db") or ":memory:" for testing.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS outcomes (
			event_id TEXT NOT NULL PRIMARY KEY,
			event_type TEXT NOT NULL,
			status TEXT NOT NULL,
			destination TEXT NOT NULL,
			error_count INTEGER NOT NULL,
			warning_count INTEGER NOT NULL,
			processed_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_outcomes_event_type
		ON outcomes(event_type)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Record implements Journal.
func (j *SQLiteJournal) Record(entry JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}

	_, err := j.db.Exec(`
		INSERT INTO outcomes (event_id, event_type, status, destination, error_count, warning_count, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			event_type = excluded.event_type,
			status = excluded.status,
			destination = excluded.destination,
			error_count = excluded.error_count,
			warning_count = excluded.warning_count,
			processed_at = excluded.processed_at
	`, entry.EventID, entry.EventType, entry.Status, entry.Destination,
		entry.ErrorCount, entry.WarningCount,
		entry.ProcessedAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// Get implements Journal.
func (j *SQLiteJournal) Get(eventID string) (JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return JournalEntry{}, ErrJournalClosed
	}

	var entry JournalEntry
	var processedAt string
	err := j.db.QueryRow(`
		SELECT event_id, event_type, status, destination, error_count, warning_count, processed_at
		FROM outcomes
		WHERE event_id = ?
	`, eventID).Scan(&entry.EventID, &entry.EventType, &entry.Status,
		&entry.Destination, &entry.ErrorCount, &entry.WarningCount, &processedAt)

	if err == sql.ErrNoRows {
		return JournalEntry{}, ErrNotFound
	}
	if err != nil {
		return JournalEntry{}, fmt.Errorf("load outcome: %w", err)
	}
	entry.ProcessedAt, _ = time.Parse(time.RFC3339Nano, processedAt)
	return entry, nil
}

// Count implements Journal.
func (j *SQLiteJournal) Count() (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return 0, ErrJournalClosed
	}

	var n int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM outcomes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outcomes: %w", err)
	}
	return n, nil
}

// Close implements Journal.
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	j.closed = true
	return j.db.Close()
}
