package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hay-kot/worklist/internal/core/metadata"
	"github.com/hay-kot/worklist/internal/data/db"
)

// MetadataStore implements metadata.Store using SQLite.
type MetadataStore struct {
	db *db.DB
}

var _ metadata.Store = (*MetadataStore)(nil)

// NewMetadataStore creates a new SQLite-backed metadata store.
func NewMetadataStore(db *db.DB) *MetadataStore {
	return &MetadataStore{db: db}
}

// Read returns the raw document stored for worker and key.
// Returns an error wrapping metadata.ErrNotFound if no row exists.
func (s *MetadataStore) Read(ctx context.Context, worker, key string) (json.RawMessage, error) {
	row, err := s.db.Queries().MetadataGet(ctx, db.MetadataGetParams{
		Worker: worker,
		Key:    key,
	})
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("metadata read %q for %q: %w", key, worker, metadata.ErrNotFound)
		}
		return nil, fmt.Errorf("metadata read %q for %q: %w", key, worker, err)
	}

	return json.RawMessage(row.Value), nil
}

// Write replaces the document stored for worker and key.
func (s *MetadataStore) Write(ctx context.Context, worker, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("metadata write %q marshal: %w", key, err)
	}

	now := time.Now().UnixNano()
	if err := s.db.Queries().MetadataSet(ctx, db.MetadataSetParams{
		Worker:    worker,
		Key:       key,
		Value:     data,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("metadata write %q for %q: %w", key, worker, err)
	}

	return nil
}

// Workers returns every worker that has a document under key, sorted.
func (s *MetadataStore) Workers(ctx context.Context, key string) ([]string, error) {
	workers, err := s.db.Queries().MetadataListWorkers(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("metadata list workers %q: %w", key, err)
	}
	return workers, nil
}
