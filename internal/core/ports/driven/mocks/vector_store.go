package mocks

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// ErrMockBackendDown simulates an unreachable vector backend
var ErrMockBackendDown = errors.New("mock vector store: backend down")

// MockVectorStore is an in-memory VectorStore with failure injection
type MockVectorStore struct {
	mu           sync.RWMutex
	passages     []*domain.Passage
	replaceCalls int
	FailReplace  bool
	FailSearch   bool
}

// NewMockVectorStore creates an empty mock store
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{}
}

func (m *MockVectorStore) Replace(ctx context.Context, passages []*domain.Passage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	if m.FailReplace {
		return ErrMockBackendDown
	}
	m.passages = passages
	return nil
}

func (m *MockVectorStore) Search(ctx context.Context, embedding []float32, topK int) ([]*domain.ScoredPassage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailSearch {
		return nil, ErrMockBackendDown
	}

	results := make([]*domain.ScoredPassage, 0, len(m.passages))
	for _, p := range m.passages {
		results = append(results, &domain.ScoredPassage{Passage: p, Score: cosine(embedding, p.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *MockVectorStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.passages), nil
}

func (m *MockVectorStore) HealthCheck(ctx context.Context) error {
	if m.FailSearch {
		return ErrMockBackendDown
	}
	return nil
}

// ReplaceCalls returns how many times Replace was called
func (m *MockVectorStore) ReplaceCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.replaceCalls
}

// Passages returns the stored passages
func (m *MockVectorStore) Passages() []*domain.Passage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.passages
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
