package persist

import (
	"context"
	"sync"
)

// MemoryStore keeps selections in process memory. It is the default store of
// a controller built without WithStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Load(ctx context.Context, scopeKey string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.data[scopeKey]
	return id, ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, scopeKey, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[scopeKey] = id
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, scopeKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, scopeKey)
	return nil
}
