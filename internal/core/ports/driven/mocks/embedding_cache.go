package mocks

import (
	"context"
	"sync"
)

// MockEmbeddingCache is a map-backed EmbeddingCache
type MockEmbeddingCache struct {
	mu      sync.Mutex
	entries map[string][]float32
	hits    int
	FailGet bool
}

// NewMockEmbeddingCache creates an empty cache
func NewMockEmbeddingCache() *MockEmbeddingCache {
	return &MockEmbeddingCache{entries: make(map[string][]float32)}
}

func (m *MockEmbeddingCache) GetMany(ctx context.Context, keys []string) (map[string][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet {
		return nil, context.DeadlineExceeded
	}
	out := make(map[string][]float32)
	for _, k := range keys {
		if v, ok := m.entries[k]; ok {
			out[k] = v
			m.hits++
		}
	}
	return out, nil
}

func (m *MockEmbeddingCache) SetMany(ctx context.Context, entries map[string][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.entries[k] = v
	}
	return nil
}

func (m *MockEmbeddingCache) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of cached entries
func (m *MockEmbeddingCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Hits returns the number of keys served from the cache
func (m *MockEmbeddingCache) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}
