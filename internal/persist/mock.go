package persist

import (
	"context"
	"sync"
)

// MockStore is a test double for Store. Methods without an override fall
// back to an embedded MemoryStore so round-trips behave naturally.
type MockStore struct {
	LoadFn  func(context.Context, string) (string, bool, error)
	SaveFn  func(context.Context, string, string) error
	ClearFn func(context.Context, string) error

	mu             sync.Mutex
	mem            *MemoryStore
	LoadCallCount  int
	SaveCallCount  int
	ClearCallCount int
	SaveCallArgs   [][]string // [scopeKey, id]
	ClearCallArgs  []string
}

var _ Store = (*MockStore)(nil)

// NewMockStore constructs a MockStore with no overrides.
func NewMockStore() *MockStore {
	return &MockStore{mem: NewMemoryStore()}
}

func (m *MockStore) Load(ctx context.Context, scopeKey string) (string, bool, error) {
	m.mu.Lock()
	m.LoadCallCount++
	fn := m.LoadFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, scopeKey)
	}
	return m.memory().Load(ctx, scopeKey)
}

func (m *MockStore) Save(ctx context.Context, scopeKey, id string) error {
	m.mu.Lock()
	m.SaveCallCount++
	m.SaveCallArgs = append(m.SaveCallArgs, []string{scopeKey, id})
	fn := m.SaveFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, scopeKey, id)
	}
	return m.memory().Save(ctx, scopeKey, id)
}

func (m *MockStore) Clear(ctx context.Context, scopeKey string) error {
	m.mu.Lock()
	m.ClearCallCount++
	m.ClearCallArgs = append(m.ClearCallArgs, scopeKey)
	fn := m.ClearFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, scopeKey)
	}
	return m.memory().Clear(ctx, scopeKey)
}

// Saves returns a copy of the recorded Save arguments.
func (m *MockStore) Saves() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.SaveCallArgs))
	copy(out, m.SaveCallArgs)
	return out
}

// SaveCount returns the number of Save calls so far.
func (m *MockStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SaveCallCount
}

func (m *MockStore) memory() *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mem == nil {
		m.mem = NewMemoryStore()
	}
	return m.mem
}
