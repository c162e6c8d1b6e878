package settings

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorer keeps settings in process memory. It is used for tests and for
// running without a database.
type MemoryStorer struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ Storer = (*MemoryStorer)(nil)

// NewMemoryStorer creates an empty in-memory store.
func NewMemoryStorer() *MemoryStorer {
	return &MemoryStorer{values: make(map[string][]byte)}
}

func (m *MemoryStorer) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorer) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound{Key: key}
	}

	return append([]byte(nil), value...), nil
}

func (m *MemoryStorer) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *MemoryStorer) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}

func (m *MemoryStorer) Close() error {
	return nil
}
