package cache

import (
	"context"
	"sort"
	"sync"
)

// Backend is a key-value store of encoded entries.
type Backend interface {
	// Kind names the backend for logs ("sqlite", "file", "memory").
	Kind() string

	// Load returns the payload stored under name; false when absent.
	Load(ctx context.Context, name string) ([]byte, bool, error)

	// Save replaces the payload stored under name.
	Save(ctx context.Context, name string, payload []byte) error

	// Delete removes name. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// Keys lists stored names in lexical order.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}

// MemoryBackend keeps payloads in process memory. Payloads are copied in and
// out so callers never share buffers with the store.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Kind() string { return "memory" }

func (m *MemoryBackend) Load(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.data[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), p...), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, name string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = append([]byte(nil), payload...)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

func (m *MemoryBackend) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryBackend) Close() error { return nil }
