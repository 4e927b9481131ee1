package docstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the document in process. Used in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	data   []byte
	exists bool
}

// NewMemoryStore returns a MemoryStore holding a copy of initial. A nil
// initial document means the document does not exist.
func NewMemoryStore(initial []byte) *MemoryStore {
	m := &MemoryStore{}
	if initial != nil {
		m.data = append([]byte(nil), initial...)
		m.exists = true
	}
	return m
}

func (m *MemoryStore) Driver() Driver { return DriverMemory }

func (m *MemoryStore) Read(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.exists {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStore) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	m.data = append([]byte(nil), data...)
	m.exists = true
	m.mu.Unlock()
	return nil
}
