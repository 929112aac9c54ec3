package curator_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfeed/curator/pkg/curator"
	"github.com/tripfeed/curator/pkg/curator/config"
	"github.com/tripfeed/curator/pkg/curator/envelope"
	"github.com/tripfeed/curator/pkg/curator/rules"
	"github.com/tripfeed/curator/pkg/curator/store"
)

// TestFromSettings verifies a processor wired entirely from loaded
// configuration: overlay schemas, store roots, and a single processor
// name shared by logs and validation blocks.
func TestFromSettings(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	overlay := []byte(`
promo_redeemed:
  required: [promoId, userId, amount]
  fields:
    promoId: [string]
    userId: [string]
    amount: [int, float]
  constraints:
    amount: positive
`)
	require.NoError(t, afero.WriteFile(fs, "schemas/overlay.yaml", overlay, 0o644))

	cfg, err := config.FromYAML([]byte(`
processor:
  name: tripfeed-curator
  source_root: raw
  curated_root: curated
  quarantine_root: quarantine
  schema_overlay: schemas/overlay.yaml
  io_timeout: 5s
  max_concurrency: 2
`))
	require.NoError(t, err)

	proc, err := curator.FromSettings(fs, config.Settings(cfg),
		curator.WithRules(rules.NewEvaluator(rules.WithClock(testClock))))
	require.NoError(t, err)

	source := store.NewFsStore(fs, "raw")
	require.NoError(t, source.Put(ctx, store.Object{
		Key:  "incoming/p1.json",
		Data: []byte(`{"type":"promo_redeemed","ts":"2025-01-15T10:00:00Z","eventId":"p1","promoId":"PR-9","userId":"u1","amount":25}`),
	}))

	out := proc.Process(ctx, "incoming/p1.json")
	require.NoError(t, out.Err)
	assert.Equal(t, envelope.StatusValid, out.Status)
	assert.Equal(t, "curated", out.Destination.Store)

	curated := store.NewFsStore(fs, "curated")
	obj, err := curated.Get(ctx, out.Destination.Key)
	require.NoError(t, err)
	rec, err := store.ReadCuratedParquet(obj.Data)
	require.NoError(t, err)

	var validation map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.ValidationJSON), &validation))
	assert.Equal(t, "tripfeed-curator", validation["validatedBy"])

	assert.NoError(t, proc.Close(), "close without a journal is a no-op")
}

// TestFromSettingsJournal verifies the journal is opened from the
// configured path and released by Close.
func TestFromSettingsJournal(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	settings := config.ProcessorSettings{
		ProcessorName:  "tripfeed-curator",
		SourceRoot:     "raw",
		CuratedRoot:    "curated",
		QuarantineRoot: "quarantine",
		JournalPath:    ":memory:",
	}

	proc, err := curator.FromSettings(fs, settings,
		curator.WithRules(rules.NewEvaluator(rules.WithClock(testClock))))
	require.NoError(t, err)

	source := store.NewFsStore(fs, "raw")
	require.NoError(t, source.Put(ctx, store.Object{
		Key:  "incoming/e1.json",
		Data: []byte(`{"type":"reserva_creada","ts":"2025-01-15T10:30:00Z","eventId":"e1","reservaId":"r1","vueloId":"v1","precio":120.5,"userId":"u1"}`),
	}))

	out := proc.Process(ctx, "incoming/e1.json")
	require.NoError(t, out.Err)
	assert.Equal(t, envelope.StatusValid, out.Status)

	require.NoError(t, proc.Close())
	assert.NoError(t, proc.Close(), "double close is harmless")
}

// TestFromSettingsErrors verifies the wiring failure modes.
func TestFromSettingsErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("missing roots", func(t *testing.T) {
		_, err := curator.FromSettings(fs, config.ProcessorSettings{})
		assert.ErrorContains(t, err, "roots are required")
	})

	t.Run("missing overlay file", func(t *testing.T) {
		_, err := curator.FromSettings(fs, config.ProcessorSettings{
			SourceRoot:     "raw",
			CuratedRoot:    "curated",
			QuarantineRoot: "quarantine",
			SchemaOverlay:  "schemas/missing.yaml",
		})
		assert.ErrorContains(t, err, "read schema overlay")
	})

	t.Run("malformed overlay", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "schemas/bad.yaml", []byte("x:\n  fields:\n    f: [integer]\n"), 0o644))
		_, err := curator.FromSettings(fs, config.ProcessorSettings{
			SourceRoot:     "raw",
			CuratedRoot:    "curated",
			QuarantineRoot: "quarantine",
			SchemaOverlay:  "schemas/bad.yaml",
		})
		assert.ErrorContains(t, err, "unknown kind")
	})
}
