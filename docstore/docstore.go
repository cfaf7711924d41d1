// Package docstore provides a small collection/document database with
// filter+order+limit queries, point reads and writes (including atomic
// numeric increments), and live-query subscriptions that re-deliver the
// full matching result set whenever the underlying collection changes.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by point reads and updates for unknown documents.
var ErrNotFound = errors.New("docstore: document not found")

// Document is one stored record: a store-assigned id plus its fields.
// Field values round-trip through JSON, so numbers read back as float64.
type Document struct {
	ID   string
	Data map[string]any
}

// Inc marks a field for atomic numeric increment in Update.
type Inc int64

// Store is the document store contract consumed by the data-access layer.
// Implementations must be safe for concurrent use. The store is an injected
// handle, never a package-level singleton, so tests can substitute doubles.
type Store interface {
	// FetchOnce executes the query once and returns all matching documents,
	// ordered per the query's OrderBy clause.
	FetchOnce(ctx context.Context, q Query) ([]Document, error)

	// Subscribe opens a live query. The full current result set is delivered
	// immediately, then re-delivered after every write to the collection.
	// Deliveries for one subscription are serialized; rapid writes may be
	// coalesced into a single re-delivery. The returned cancel function is
	// idempotent and waits for the delivery goroutine to stop, so no callback
	// runs after it returns.
	Subscribe(q Query, onSnapshot func([]Document), onError func(error)) (cancel func(), err error)

	// GetByID returns one document, or ErrNotFound.
	GetByID(ctx context.Context, collection, id string) (Document, error)

	// Put creates or replaces a document. An empty id requests a
	// store-assigned one; the effective id is returned.
	Put(ctx context.Context, collection, id string, data map[string]any) (string, error)

	// Update merges fields into an existing document. A value of type Inc is
	// applied as an atomic numeric increment. Returns ErrNotFound for
	// unknown documents.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error

	Close() error
}

// Millis converts a time to the store's native timestamp representation,
// a Unix-millisecond number. Numbers order correctly both in JSON and in SQL.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored timestamp back to a time. It accepts the
// numeric types a JSON round-trip can produce; ok is false for anything else.
func FromMillis(v any) (time.Time, bool) {
	switch n := v.(type) {
	case int64:
		return time.UnixMilli(n), true
	case float64:
		return time.UnixMilli(int64(n)), true
	case int:
		return time.UnixMilli(int64(n)), true
	}
	return time.Time{}, false
}
