package classify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfeed/curator/pkg/curator/classify"
	"github.com/tripfeed/curator/pkg/curator/envelope"
	"github.com/tripfeed/curator/pkg/curator/rules"
	"github.com/tripfeed/curator/pkg/curator/schema"
)

// newClassifier pins the business-rule clock near the test fixtures so
// staleness warnings don't leak into unrelated assertions.
func newClassifier() *classify.Classifier {
	clock := func() time.Time {
		return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	}
	return classify.New(schema.Builtin(), classify.WithRules(rules.NewEvaluator(rules.WithClock(clock))))
}

func classifyMap(t *testing.T, fields map[string]any) *envelope.Result {
	t.Helper()
	return newClassifier().Classify(context.Background(), envelope.New(fields))
}

func booking() map[string]any {
	return map[string]any{
		"type":      "reserva_creada",
		"ts":        "2024-01-15T10:30:00Z",
		"eventId":   "e1",
		"reservaId": "r1",
		"vueloId":   "v1",
		"precio":    120.5,
		"userId":    "u1",
	}
}

// TestValidBooking verifies the happy path produces no diagnostics.
func TestValidBooking(t *testing.T) {
	res := classifyMap(t, booking())

	assert.Equal(t, envelope.StatusValid, res.Status)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

// TestConstraintViolation verifies a negative price rejects the event.
func TestConstraintViolation(t *testing.T) {
	fields := booking()
	fields["precio"] = -5

	res := classifyMap(t, fields)

	assert.Equal(t, envelope.StatusInvalid, res.Status)
	assert.Contains(t, res.Errors, "field precio violates constraint positive")
}

// TestCatalogNormalization verifies the currency field is canonicalized.
func TestCatalogNormalization(t *testing.T) {
	res := classifyMap(t, map[string]any{
		"type":             "catalogo",
		"ts":               "2024-01-15T10:30:00Z",
		"eventId":          "e2",
		"id":               7,
		"id_vuelo":         "AR1234",
		"aerolinea":        "Aerolineas",
		"origen":           "EZE",
		"destino":          "MAD",
		"precio":           850.0,
		"moneda":           "usd",
		"despegue":         "2024-01-15T08:00:00Z",
		"aterrizaje_local": "2024-01-15T20:00:00Z",
		"estado_vuelo":     "on time",
		"capacidadAvion":   220,
		"tipoAvion":        "e190",
	})

	require.Equal(t, envelope.StatusValid, res.Status, "errors: %v", res.Errors)

	moneda, _ := res.Envelope.Get("moneda")
	assert.Equal(t, "USD", moneda)
	estado, _ := res.Envelope.Get("estado_vuelo")
	assert.Equal(t, "En hora", estado)
	avion, _ := res.Envelope.Get("tipoAvion")
	assert.Equal(t, "E190", avion)
}

// TestUnknownType verifies unrecognized types stay valid with a warning.
func TestUnknownType(t *testing.T) {
	res := classifyMap(t, map[string]any{
		"type":    "unknown_type",
		"ts":      "2024-01-15T10:30:00Z",
		"eventId": "e3",
	})

	assert.Equal(t, envelope.StatusValid, res.Status)
	assert.Contains(t, res.Warnings, "unknown event type: unknown_type")
	assert.Empty(t, res.Errors)
}

// TestMissingUniversalField verifies the short-circuit: no type-specific
// diagnostics are produced when an identifier is absent.
func TestMissingUniversalField(t *testing.T) {
	fields := booking()
	delete(fields, "eventId")
	delete(fields, "reservaId") // would draw a type-specific error otherwise

	res := classifyMap(t, fields)

	assert.Equal(t, envelope.StatusInvalid, res.Status)
	assert.Equal(t, []string{"missing required field: eventId"}, res.Errors)
}

// TestCorruptedPayload verifies unparseable bytes are terminal.
func TestCorruptedPayload(t *testing.T) {
	for _, raw := range []string{"not json at all", `[1,2]`, `"scalar"`, `null`, `true`, ""} {
		res := newClassifier().ClassifyBytes(context.Background(), []byte(raw))
		assert.Equal(t, envelope.StatusCorrupted, res.Status)
		assert.NotEmpty(t, res.Errors)
	}
}

// TestClassifyBytesValid verifies the byte entry point parses and runs
// the full pipeline.
func TestClassifyBytesValid(t *testing.T) {
	raw := []byte(`{"type":"reserva_creada","ts":"2024-01-15T10:30:00Z","eventId":"e1","reservaId":"r1","vueloId":"v1","precio":"120.5","userId":"u1"}`)
	res := newClassifier().ClassifyBytes(context.Background(), raw)

	assert.Equal(t, envelope.StatusValid, res.Status)
	precio, _ := res.Envelope.Get("precio")
	assert.Equal(t, 120.5, precio, "numeric string coerces to number")
}

// TestDiagnosticsAccumulate verifies the pipeline reports every problem
// in one pass instead of stopping at the first.
func TestDiagnosticsAccumulate(t *testing.T) {
	res := classifyMap(t, map[string]any{
		"type":    "reserva_creada",
		"ts":      "2024-01-15T10:30:00Z",
		"eventId": "e1",
		// reservaId and vueloId missing entirely
		"precio":     "gratis", // uncoercible
		"userId":     "",       // violates non_empty
		"contraband": true,     // undeclared field
	})

	assert.Equal(t, envelope.StatusInvalid, res.Status)
	assert.Contains(t, res.Errors, "missing required field for reserva_creada: reservaId")
	assert.Contains(t, res.Errors, "missing required field for reserva_creada: vueloId")
	assert.Contains(t, res.Errors, "field precio must be of type int, float")
	assert.Contains(t, res.Errors, "field userId violates constraint non_empty")
	assert.Contains(t, res.Warnings, "unexpected field for reserva_creada: contraband")
}

// TestTimestampNormalizedInPlace verifies the envelope carries the
// canonical form after classification.
func TestTimestampNormalizedInPlace(t *testing.T) {
	fields := booking()
	fields["ts"] = "2024-01-15T10:30:00+03:00"

	res := classifyMap(t, fields)

	require.Equal(t, envelope.StatusValid, res.Status)
	assert.Equal(t, "2024-01-15T07:30:00Z", res.Envelope.Timestamp())
}

// TestInvalidTimestamp verifies a malformed ts is a hard error.
func TestInvalidTimestamp(t *testing.T) {
	fields := booking()
	fields["ts"] = "ayer"

	res := classifyMap(t, fields)

	assert.Equal(t, envelope.StatusInvalid, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "invalid timestamp format")
}

// TestTimestampAlias verifies a schema alias supplies a missing ts with
// a provenance warning, and that processing-clock fallback never happens.
func TestTimestampAlias(t *testing.T) {
	t.Run("alias adopted with warning", func(t *testing.T) {
		res := classifyMap(t, map[string]any{
			"type":                "users.user.created",
			"eventId":             "e9",
			"userId":              "u-9",
			"nationalityOrOrigin": "AR",
			"roles":               []any{"buyer"},
			"createdAt":           "2024-01-15T09:00:00Z",
		})

		assert.Equal(t, envelope.StatusValid, res.Status, "errors: %v", res.Errors)
		assert.Contains(t, res.Warnings, "ts missing, derived from createdAt")
		assert.Equal(t, "2024-01-15T09:00:00Z", res.Envelope.Timestamp())
	})

	t.Run("no alias means missing ts is an error", func(t *testing.T) {
		res := classifyMap(t, map[string]any{
			"type":      "reserva_cancelada",
			"eventId":   "e10",
			"reservaId": "r1",
			"userId":    "u1",
			"motivo":    "cambio de planes",
		})

		assert.Equal(t, envelope.StatusInvalid, res.Status)
		assert.Contains(t, res.Errors, "missing required field: ts")
	})
}

// TestRolesHomogenized verifies mixed-type role lists coerce to strings.
func TestRolesHomogenized(t *testing.T) {
	res := classifyMap(t, map[string]any{
		"type":                "users.user.created",
		"ts":                  "2024-01-15T09:00:00Z",
		"eventId":             "e11",
		"userId":              "u-9",
		"nationalityOrOrigin": "AR",
		"roles":               []any{"admin", 2},
		"createdAt":           "2024-01-15T09:00:00Z",
	})

	require.Equal(t, envelope.StatusValid, res.Status, "errors: %v", res.Errors)
	roles, _ := res.Envelope.Get("roles")
	assert.Equal(t, []string{"admin", "2"}, roles)
}

// TestDepartureArrivalOrdering verifies the cross-field sanity warning.
func TestDepartureArrivalOrdering(t *testing.T) {
	res := classifyMap(t, map[string]any{
		"type":             "catalogo",
		"ts":               "2024-01-15T10:30:00Z",
		"eventId":          "e12",
		"id":               7,
		"id_vuelo":         "AR1234",
		"aerolinea":        "Aerolineas",
		"origen":           "EZE",
		"destino":          "MAD",
		"precio":           850.0,
		"moneda":           "USD",
		"despegue":         "2024-01-15T20:00:00Z",
		"aterrizaje_local": "2024-01-15T08:00:00Z",
		"estado_vuelo":     "En hora",
		"capacidadAvion":   220,
		"tipoAvion":        "A330",
	})

	assert.Equal(t, envelope.StatusValid, res.Status, "errors: %v", res.Errors)
	assert.Contains(t, res.Warnings, "aterrizaje_local precedes despegue")
}

// TestUnknownStatusKept verifies an unmapped status warns but survives.
func TestUnknownStatusKept(t *testing.T) {
	res := classifyMap(t, map[string]any{
		"type":             "catalogo",
		"ts":               "2024-01-15T10:30:00Z",
		"eventId":          "e13",
		"id":               7,
		"id_vuelo":         "AR1234",
		"aerolinea":        "Aerolineas",
		"origen":           "EZE",
		"destino":          "MAD",
		"precio":           850.0,
		"moneda":           "USD",
		"despegue":         "2024-01-15T08:00:00Z",
		"aterrizaje_local": "2024-01-15T20:00:00Z",
		"estado_vuelo":     "boarding",
		"capacidadAvion":   220,
		"tipoAvion":        "A330",
	})

	assert.Equal(t, envelope.StatusValid, res.Status, "errors: %v", res.Errors)
	assert.Contains(t, res.Warnings, "unknown estado_vuelo: boarding")
	estado, _ := res.Envelope.Get("estado_vuelo")
	assert.Equal(t, "boarding", estado)
}
