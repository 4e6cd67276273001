package metadata

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document provides typed access to a single key of a Store for any worker.
type Document[T any] struct {
	store Store
	key   string
}

// Bind returns a Document[T] for key.
func Bind[T any](store Store, key string) *Document[T] {
	return &Document[T]{store: store, key: key}
}

// Key returns the bound key.
func (d *Document[T]) Key() string {
	return d.key
}

// Raw returns the undecoded document for worker.
func (d *Document[T]) Raw(ctx context.Context, worker string) (json.RawMessage, error) {
	return d.store.Read(ctx, worker, d.key)
}

// Get retrieves and deserializes the document for worker.
func (d *Document[T]) Get(ctx context.Context, worker string) (T, error) {
	var v T

	raw, err := d.store.Read(ctx, worker, d.key)
	if err != nil {
		return v, err
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %q for worker %q: %w", d.key, worker, err)
	}

	return v, nil
}

// Set replaces the document for worker.
func (d *Document[T]) Set(ctx context.Context, worker string, value T) error {
	return d.store.Write(ctx, worker, d.key, value)
}
