package store_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfeed/curator/pkg/curator/store"
)

// journalImpls returns each Journal implementation under a fresh state.
func journalImpls(t *testing.T) map[string]store.Journal {
	t.Helper()
	sqlite, err := store.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	memory := store.NewMemoryJournal()
	t.Cleanup(func() { memory.Close() })

	return map[string]store.Journal{"memory": memory, "sqlite": sqlite}
}

func sampleEntry(eventID string) store.JournalEntry {
	return store.JournalEntry{
		EventID:      eventID,
		EventType:    "reserva_creada",
		Status:       "valid",
		Destination:  "year=2025/month=01/day=15/type=reserva_creada/" + eventID + ".parquet",
		ErrorCount:   0,
		WarningCount: 1,
		ProcessedAt:  time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

// TestJournalRecordAndGet verifies round-tripping an outcome.
func TestJournalRecordAndGet(t *testing.T) {
	for name, j := range journalImpls(t) {
		t.Run(name, func(t *testing.T) {
			entry := sampleEntry("e1")
			require.NoError(t, j.Record(entry))

			got, err := j.Get("e1")
			require.NoError(t, err)
			assert.Equal(t, entry.EventType, got.EventType)
			assert.Equal(t, entry.Status, got.Status)
			assert.Equal(t, entry.Destination, got.Destination)
			assert.Equal(t, entry.WarningCount, got.WarningCount)
			assert.True(t, entry.ProcessedAt.Equal(got.ProcessedAt))
		})
	}
}

// TestJournalUpsert verifies reprocessing replaces the previous record.
func TestJournalUpsert(t *testing.T) {
	for name, j := range journalImpls(t) {
		t.Run(name, func(t *testing.T) {
			first := sampleEntry("e1")
			require.NoError(t, j.Record(first))

			second := first
			second.Status = "invalid"
			second.ErrorCount = 2
			require.NoError(t, j.Record(second))

			got, err := j.Get("e1")
			require.NoError(t, err)
			assert.Equal(t, "invalid", got.Status)
			assert.Equal(t, 2, got.ErrorCount)

			n, err := j.Count()
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

// TestJournalNotFound verifies the sentinel for unjournaled events.
func TestJournalNotFound(t *testing.T) {
	for name, j := range journalImpls(t) {
		t.Run(name, func(t *testing.T) {
			_, err := j.Get("ghost")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

// TestJournalClosed verifies operations fail after Close.
func TestJournalClosed(t *testing.T) {
	for name, j := range journalImpls(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, j.Close())
			assert.NoError(t, j.Close(), "double close is harmless")

			assert.ErrorIs(t, j.Record(sampleEntry("e1")), store.ErrJournalClosed)
			_, err := j.Get("e1")
			assert.ErrorIs(t, err, store.ErrJournalClosed)
			_, err = j.Count()
			assert.ErrorIs(t, err, store.ErrJournalClosed)
		})
	}
}

// TestJournalConcurrentRecord verifies writer safety.
func TestJournalConcurrentRecord(t *testing.T) {
	for name, j := range journalImpls(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					assert.NoError(t, j.Record(sampleEntry(fmt.Sprintf("e%d", n))))
				}(i)
			}
			wg.Wait()

			count, err := j.Count()
			require.NoError(t, err)
			assert.Equal(t, 20, count)
		})
	}
}
