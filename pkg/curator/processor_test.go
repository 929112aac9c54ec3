package curator_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfeed/curator/pkg/curator"
	"github.com/tripfeed/curator/pkg/curator/envelope"
	"github.com/tripfeed/curator/pkg/curator/rules"
	"github.com/tripfeed/curator/pkg/curator/schema"
	"github.com/tripfeed/curator/pkg/curator/store"
)

var testClock = func() time.Time {
	return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
}

type fixture struct {
	proc       *curator.Processor
	source     *store.FsStore
	curated    *store.FsStore
	quarantine *store.FsStore
	journal    *store.MemoryJournal
}

func newFixture(t *testing.T, opts ...curator.Option) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	f := &fixture{
		source:     store.NewFsStore(fs, "raw"),
		curated:    store.NewFsStore(fs, "curated"),
		quarantine: store.NewFsStore(fs, "quarantine"),
		journal:    store.NewMemoryJournal(),
	}

	router := store.NewRouter(f.curated, f.quarantine,
		store.WithProcessorName("tripfeed-curator"),
		store.WithRouterClock(testClock))

	opts = append([]curator.Option{
		curator.WithJournal(f.journal),
		curator.WithRules(rules.NewEvaluator(rules.WithClock(testClock))),
	}, opts...)
	f.proc = curator.New(schema.Builtin(), f.source, router, opts...)
	return f
}

func (f *fixture) seed(t *testing.T, key, payload string) {
	t.Helper()
	err := f.source.Put(context.Background(), store.Object{Key: key, Data: []byte(payload)})
	require.NoError(t, err)
}

// TestProcessValidEvent verifies the full fetch/classify/route/journal path.
func TestProcessValidEvent(t *testing.T) {
	f := newFixture(t)
	key := "year=2025/month=01/day=15/e1.json"
	f.seed(t, key, `{"type":"reserva_creada","ts":"2025-01-15T10:30:00Z","eventId":"e1","reservaId":"r1","vueloId":"v1","precio":120.5,"userId":"u1"}`)

	out := f.proc.Process(context.Background(), key)

	require.NoError(t, out.Err)
	assert.Equal(t, envelope.StatusValid, out.Status)
	assert.Equal(t, "e1", out.EventID)
	assert.Equal(t, "reserva_creada", out.EventType)
	assert.NotEmpty(t, out.ProcessingID)
	assert.Equal(t, "curated", out.Destination.Store)
	assert.Equal(t, "year=2025/month=01/day=15/type=reserva_creada/e1.parquet", out.Destination.Key)

	obj, err := f.curated.Get(context.Background(), out.Destination.Key)
	require.NoError(t, err)
	rec, err := store.ReadCuratedParquet(obj.Data)
	require.NoError(t, err)
	assert.Equal(t, "e1", rec.EventID)

	entry, err := f.journal.Get("e1")
	require.NoError(t, err)
	assert.Equal(t, "valid", entry.Status)
	assert.Equal(t, out.Destination.Key, entry.Destination)
}

// TestProcessInvalidEvent verifies rejected events land in quarantine
// without surfacing a processing error.
func TestProcessInvalidEvent(t *testing.T) {
	f := newFixture(t)
	key := "year=2025/month=01/day=15/e2.json"
	f.seed(t, key, `{"type":"reserva_creada","ts":"2025-01-15T10:30:00Z","eventId":"e2","reservaId":"r1","vueloId":"v1","precio":-5,"userId":"u1"}`)

	out := f.proc.Process(context.Background(), key)

	require.NoError(t, out.Err)
	assert.Equal(t, envelope.StatusInvalid, out.Status)
	assert.Equal(t, "quarantine", out.Destination.Store)
	assert.Contains(t, out.Errors, "field precio violates constraint positive")

	_, err := f.quarantine.Get(context.Background(), out.Destination.Key)
	assert.NoError(t, err)
}

// TestProcessCorruptedEvent verifies unparseable payloads quarantine.
func TestProcessCorruptedEvent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "incoming/garbled.json", `{{{ not json`)

	out := f.proc.Process(context.Background(), "incoming/garbled.json")

	require.NoError(t, out.Err)
	assert.Equal(t, envelope.StatusCorrupted, out.Status)
	assert.Equal(t, "quarantine", out.Destination.Store)
	assert.NotEmpty(t, out.Errors)
}

// TestProcessMissingSource verifies fetch failures are retryable errors.
func TestProcessMissingSource(t *testing.T) {
	f := newFixture(t)

	out := f.proc.Process(context.Background(), "raw/ghost.json")

	require.Error(t, out.Err)
	assert.ErrorIs(t, out.Err, store.ErrNotFound)
	assert.Empty(t, out.Destination.Store, "nothing persisted on fetch failure")

	n, err := f.journal.Count()
	require.NoError(t, err)
	assert.Zero(t, n, "failed fetches are not journaled")
}

// TestProcessIdempotent verifies reprocessing converges on one object and
// one journal entry.
func TestProcessIdempotent(t *testing.T) {
	f := newFixture(t)
	key := "year=2025/month=01/day=15/e1.json"
	f.seed(t, key, `{"type":"pago_aprobado","ts":"2025-01-15T10:30:00Z","eventId":"e1","paymentId":"p1","reservaId":"r1","userId":"u1","amount":300}`)

	first := f.proc.Process(context.Background(), key)
	second := f.proc.Process(context.Background(), key)

	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	assert.Equal(t, first.Destination.Key, second.Destination.Key)
	assert.NotEqual(t, first.ProcessingID, second.ProcessingID)

	n, err := f.journal.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// TestProcessBatch verifies parallel processing with order preservation.
func TestProcessBatch(t *testing.T) {
	f := newFixture(t, curator.WithMaxConcurrency(3))

	keys := []string{
		"year=2025/month=01/day=15/e1.json",
		"year=2025/month=01/day=15/e2.json",
		"missing.json",
		"year=2025/month=01/day=15/e4.json",
	}
	f.seed(t, keys[0], `{"type":"reserva_creada","ts":"2025-01-15T10:30:00Z","eventId":"e1","reservaId":"r1","vueloId":"v1","precio":100,"userId":"u1"}`)
	f.seed(t, keys[1], `{"type":"reserva_creada","ts":"2025-01-15T10:30:00Z","eventId":"e2","reservaId":"r2","vueloId":"v1","precio":-1,"userId":"u1"}`)
	f.seed(t, keys[3], `broken payload`)

	outcomes := f.proc.ProcessBatch(context.Background(), keys)

	require.Len(t, outcomes, 4)
	assert.Equal(t, keys[0], outcomes[0].Key)
	assert.Equal(t, envelope.StatusValid, outcomes[0].Status)
	assert.Equal(t, envelope.StatusInvalid, outcomes[1].Status)
	assert.ErrorIs(t, outcomes[2].Err, store.ErrNotFound)
	assert.Equal(t, envelope.StatusCorrupted, outcomes[3].Status)
}

// TestProcessBatchCancelled verifies unstarted keys report the context error.
func TestProcessBatchCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	keys := []string{"a.json", "b.json", "c.json"}
	outcomes := f.proc.ProcessBatch(ctx, keys)

	require.Len(t, outcomes, 3)
	for _, out := range outcomes {
		assert.Error(t, out.Err)
	}
}

// TestProcessJournalFailureNonFatal verifies a broken journal does not
// fail processing.
func TestProcessJournalFailureNonFatal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.journal.Close())

	key := "year=2025/month=01/day=15/e1.json"
	f.seed(t, key, `{"type":"reserva_creada","ts":"2025-01-15T10:30:00Z","eventId":"e1","reservaId":"r1","vueloId":"v1","precio":100,"userId":"u1"}`)

	out := f.proc.Process(context.Background(), key)

	require.NoError(t, out.Err)
	assert.Equal(t, envelope.StatusValid, out.Status)
}
