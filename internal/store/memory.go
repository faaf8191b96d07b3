package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"quote-drafter/internal/core"
	"quote-drafter/internal/metrics"
)

// MemoryStore keeps the document in process memory, serialized as JSON so
// callers never share slices with the stored copy.
type MemoryStore struct {
	mu      sync.Mutex
	data    []byte
	version int64
	drafts  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context) (*core.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return core.EmptyDatabase(), nil
	}
	var db core.Database
	if err := json.Unmarshal(s.data, &db); err != nil {
		return nil, fmt.Errorf("decode memory document: %w", err)
	}
	db.Normalize()
	return &db, nil
}

func (s *MemoryStore) Save(ctx context.Context, db *core.Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if db.Version != s.version {
		metrics.Default().StoreConflict("memory")
		return fmt.Errorf("save document at version %d, stored %d: %w", db.Version, s.version, core.ErrConflict)
	}
	next := *db
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		metrics.Default().StoreWriteFailed("memory")
		return &core.StorageWriteError{Op: "encode", Err: err}
	}
	s.data = data
	s.version = next.Version
	db.Version = next.Version
	return nil
}

func (s *MemoryStore) LoadDraft(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.drafts[key]
	if !ok {
		return nil, fmt.Errorf("draft %q: %w", key, core.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) SaveDraft(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) DeleteDraft(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}
