package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory driven.VectorStore that ranks passages by brute-force cosine similarity.
type VectorStore struct {
	mu       sync.RWMutex
	passages []*domain.Passage
	norms    []float64
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

// Replace swaps the passage set. Passages without an embedding are kept but never match.
func (s *VectorStore) Replace(_ context.Context, passages []*domain.Passage) error {
	stored := make([]*domain.Passage, len(passages))
	norms := make([]float64, len(passages))
	for i, p := range passages {
		cp := *p
		stored[i] = &cp
		norms[i] = norm(p.Embedding)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages = stored
	s.norms = norms
	return nil
}

// Search returns the topK most similar passages, best first. Ties keep insertion order.
func (s *VectorStore) Search(_ context.Context, embedding []float32, topK int) ([]*domain.ScoredPassage, error) {
	if topK <= 0 {
		return nil, nil
	}
	queryNorm := norm(embedding)

	s.mu.RLock()
	results := make([]*domain.ScoredPassage, 0, len(s.passages))
	for i, p := range s.passages {
		if len(p.Embedding) != len(embedding) || s.norms[i] == 0 || queryNorm == 0 {
			continue
		}
		results = append(results, &domain.ScoredPassage{
			Passage: p,
			Score:   dot(embedding, p.Embedding) / (queryNorm * s.norms[i]),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored passages.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages), nil
}

// HealthCheck always succeeds.
func (s *VectorStore) HealthCheck(_ context.Context) error {
	return nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
