package driven

import (
	"context"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// VectorStore holds embedded passages and ranks them by cosine similarity.
// Implementations must tolerate concurrent Search calls.
type VectorStore interface {
	// Replace swaps the whole passage set atomically
	Replace(ctx context.Context, passages []*domain.Passage) error

	// Search returns the topK passages most similar to the embedding, best first
	Search(ctx context.Context, embedding []float32, topK int) ([]*domain.ScoredPassage, error)

	// Count returns the number of stored passages
	Count(ctx context.Context) (int, error)

	// HealthCheck verifies the backend is reachable
	HealthCheck(ctx context.Context) error
}
