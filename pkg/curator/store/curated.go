package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/tripfeed/curator/pkg/curator/envelope"
)

// CuratedRecord is the homogeneous column layout every valid event is
// flattened into, whatever its type. A small set of promoted scalar
// columns supports partition pruning and joins; everything else lives in
// three serialized blob columns that consumers extract from by path.
type CuratedRecord struct {
	EventType      string `parquet:"eventType" json:"eventType"`
	Timestamp      string `parquet:"ts" json:"ts"`
	EventID        string `parquet:"eventId" json:"eventId"`
	RequestID      string `parquet:"requestId,optional" json:"requestId,omitempty"`
	ReceivedAt     string `parquet:"receivedAt,optional" json:"receivedAt,omitempty"`
	MetadataJSON   string `parquet:"metadata_json" json:"metadata_json"`
	ValidationJSON string `parquet:"validation_json" json:"validation_json"`
	PayloadJSON    string `parquet:"payload_json" json:"payload_json"`
	IngestedAt     string `parquet:"ingestedAt" json:"ingestedAt"`
}

// NewCuratedRecord flattens a validated envelope into the curated layout.
// validation is the diagnostics block stamped by the router; ingestedAt is
// the processing time.
func NewCuratedRecord(env *envelope.Envelope, validation map[string]any, ingestedAt time.Time) (CuratedRecord, error) {
	metadataJSON, err := json.Marshal(metadataOrEmpty(env))
	if err != nil {
		return CuratedRecord{}, fmt.Errorf("marshal metadata: %w", err)
	}
	validationJSON, err := json.Marshal(validation)
	if err != nil {
		return CuratedRecord{}, fmt.Errorf("marshal validation: %w", err)
	}
	payloadJSON, err := json.Marshal(env.Payload())
	if err != nil {
		return CuratedRecord{}, fmt.Errorf("marshal payload: %w", err)
	}

	return CuratedRecord{
		EventType:      env.Type(),
		Timestamp:      env.Timestamp(),
		EventID:        env.EventID(),
		RequestID:      env.RequestID(),
		ReceivedAt:     env.ReceivedAt(),
		MetadataJSON:   string(metadataJSON),
		ValidationJSON: string(validationJSON),
		PayloadJSON:    string(payloadJSON),
		IngestedAt:     ingestedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
	}, nil
}

func metadataOrEmpty(env *envelope.Envelope) map[string]any {
	if m := env.Metadata(); m != nil {
		return m
	}
	return map[string]any{}
}

// MarshalParquet encodes a curated record as a single-row parquet file
// with snappy compression.
func MarshalParquet(rec CuratedRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[CuratedRecord](&buf, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write([]CuratedRecord{rec}); err != nil {
		return nil, fmt.Errorf("write parquet row: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadCuratedParquet decodes a single-record parquet object, for
// consumers and tests.
func ReadCuratedParquet(data []byte) (CuratedRecord, error) {
	rows, err := parquet.Read[CuratedRecord](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return CuratedRecord{}, fmt.Errorf("read parquet: %w", err)
	}
	if len(rows) != 1 {
		return CuratedRecord{}, fmt.Errorf("expected 1 curated row, got %d", len(rows))
	}
	return rows[0], nil
}
