package driven

import (
	"context"
)

// EmbeddingService generates text embeddings
type EmbeddingService interface {
	// Embed generates embeddings for multiple texts, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a search query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}

// EmbeddingCache stores passage embeddings keyed by model and content hash.
// Embeddings are deterministic for a given model, so entries never go stale.
type EmbeddingCache interface {
	// GetMany returns cached vectors for keys; missing keys are absent from the map
	GetMany(ctx context.Context, keys []string) (map[string][]float32, error)

	// SetMany stores vectors by key
	SetMany(ctx context.Context, entries map[string][]float32) error

	// Ping checks if the cache backend is healthy
	Ping(ctx context.Context) error
}
