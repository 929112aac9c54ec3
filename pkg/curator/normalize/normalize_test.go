package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfeed/curator/pkg/curator/normalize"
)

// TestTimestamp verifies canonicalization to UTC ISO 8601 with Z suffix.
func TestTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "2025-01-15T10:30:00Z", "2025-01-15T10:30:00Z"},
		{"offset converts to utc", "2025-01-15T10:30:00+03:00", "2025-01-15T07:30:00Z"},
		{"negative offset", "2025-01-15T22:30:00-05:00", "2025-01-16T03:30:00Z"},
		{"no zone assumes utc", "2025-01-15T10:30:00", "2025-01-15T10:30:00Z"},
		{"space separator", "2025-01-15 10:30:00", "2025-01-15T10:30:00Z"},
		{"date only", "2025-01-15", "2025-01-15T00:00:00Z"},
		{"subsecond truncates", "2025-01-15T10:30:00.999Z", "2025-01-15T10:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.Timestamp(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestTimestampIdempotent verifies normalizing twice changes nothing.
func TestTimestampIdempotent(t *testing.T) {
	first, err := normalize.Timestamp("2025-01-15T10:30:00+02:00")
	require.NoError(t, err)
	second, err := normalize.Timestamp(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestTimestampInvalid verifies the rejection of unparseable values.
func TestTimestampInvalid(t *testing.T) {
	for _, in := range []string{"", "no es una fecha", "15/01/2025", "2025-13-45T99:99:99Z"} {
		t.Run(in, func(t *testing.T) {
			_, err := normalize.Timestamp(in)
			assert.ErrorIs(t, err, normalize.ErrInvalidTimestamp)
		})
	}
}

// TestCurrency verifies upcasing and the three-letter shape check.
func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"usd", "USD", true},
		{"ARS", "ARS", true},
		{"eUr", "EUR", true},
		{"us", "US", false},
		{"dollar", "DOLLAR", false},
		{"U$D", "U$D", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalize.Currency(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestFlightStatus verifies canonicalization across producer spellings.
func TestFlightStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"En hora", "En hora", true},
		{"en_hora", "En hora", true},
		{"ON TIME", "En hora", true},
		{"ontime", "En hora", true},
		{"delayed", "Demorado", true},
		{"Demorado", "Demorado", true},
		{"delay", "Demorado", true},
		{"cancelled", "Cancelado", true},
		{"cancelado", "Cancelado", true},
		{"boarding", "boarding", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalize.FlightStatus(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestAircraftType verifies upcasing against the known fleet.
func TestAircraftType(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"e190", "E190", true},
		{"A330", "A330", true},
		{"b737", "B737", true},
		{"Concorde", "CONCORDE", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalize.AircraftType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
