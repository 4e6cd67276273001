package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/hay-kot/worklist/internal/core/metadata"
	"github.com/hay-kot/worklist/pkg/kv"
)

type memoryKey struct {
	worker string
	key    string
}

// MemoryStore implements metadata.Store in process memory. Documents are kept
// JSON-encoded so reads never alias a caller's value.
type MemoryStore struct {
	data *kv.Store[memoryKey, []byte]
}

var _ metadata.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory metadata store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: kv.New[memoryKey, []byte]()}
}

// Read returns the raw document stored for worker and key.
func (s *MemoryStore) Read(_ context.Context, worker, key string) (json.RawMessage, error) {
	data, ok := s.data.Get(memoryKey{worker: worker, key: key})
	if !ok {
		return nil, fmt.Errorf("metadata read %q for %q: %w", key, worker, metadata.ErrNotFound)
	}
	return json.RawMessage(slices.Clone(data)), nil
}

// Write replaces the document stored for worker and key.
func (s *MemoryStore) Write(_ context.Context, worker, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("metadata write %q marshal: %w", key, err)
	}
	s.data.Set(memoryKey{worker: worker, key: key}, data)
	return nil
}

// Workers returns every worker that has a document under key, sorted.
func (s *MemoryStore) Workers(_ context.Context, key string) ([]string, error) {
	var workers []string
	for _, k := range s.data.Keys() {
		if k.key == key {
			workers = append(workers, k.worker)
		}
	}
	slices.Sort(workers)
	return workers, nil
}
