// Package metadata defines the per-worker document store the todo list is
// persisted through.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Read when no document exists for the worker and key.
var ErrNotFound = errors.New("metadata not found")

// Store reads and writes JSON documents keyed by worker and key.
// Implementations own durability and concurrency; callers get last-write-wins.
type Store interface {
	// Read returns the raw document, or an error wrapping ErrNotFound.
	Read(ctx context.Context, worker, key string) (json.RawMessage, error)
	// Write replaces the document with the JSON encoding of doc.
	Write(ctx context.Context, worker, key string, doc any) error
}
