// Package store persists classified events: curated columnar records for
// valid events, quarantine JSON records for invalid and corrupted ones,
// and an optional processing journal for reprocessing visibility.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Object is a stored blob plus its descriptive metadata, mirroring the
// object-storage model the pipeline was built against.
type Object struct {
	Key         string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// ObjectStore is the minimal object-storage contract the pipeline needs.
// Implementations must be safe for concurrent use. Put overwrites, which
// is what makes reprocessing idempotent: output keys are derived from the
// event's own identifier.
type ObjectStore interface {
	// Put writes an object, overwriting any previous object at the key.
	Put(ctx context.Context, obj Object) error

	// Get retrieves an object. Returns ErrNotFound when the key does
	// not exist.
	Get(ctx context.Context, key string) (Object, error)
}

// Sentinel errors for storage operations.
var (
	// ErrNotFound indicates the object doesn't exist.
	ErrNotFound = errors.New("object not found")

	// ErrJournalClosed indicates the journal has been closed.
	ErrJournalClosed = errors.New("journal closed")
)

// WriteError wraps a storage write failure with its destination. Write
// failures are fatal for the event and surface to the caller; they are
// deliberately distinct from validation failures.
type WriteError struct {
	// Store names the logical destination ("curated" or "quarantine").
	Store string
	// Key is the destination object key.
	Key string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("store %s write at %s: %v", e.Store, e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *WriteError) Unwrap() error {
	return e.Err
}
