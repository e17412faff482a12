package domain

import "sync"

// Vector store backends
const (
	VectorBackendMemory   = "memory"
	VectorBackendPostgres = "postgres"
)

// RuntimeConfig tracks which services are available at runtime.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	VectorBackend string // "memory" or "postgres"

	// Dynamic capability flags
	embeddingAvailable bool
	llmAvailable       bool
	indexAvailable     bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(vectorBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		VectorBackend: vectorBackend,
	}
}

// EmbeddingAvailable returns whether embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LLMAvailable returns whether LLM service is available
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// IndexAvailable returns whether the context index has been built
func (c *RuntimeConfig) IndexAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// SetIndexAvailable updates the index availability flag
func (c *RuntimeConfig) SetIndexAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexAvailable = available
}

// CanDoSemanticSearch returns true if passages can be ranked by embedding
func (c *RuntimeConfig) CanDoSemanticSearch() bool {
	return c.EmbeddingAvailable() && c.IndexAvailable()
}

// CanDoLLMAssisted returns true if LLM features are available
func (c *RuntimeConfig) CanDoLLMAssisted() bool {
	return c.LLMAvailable()
}

// Status summarizes the capabilities of a running instance
type Status struct {
	Version            string `json:"version"`
	LLMAvailable       bool   `json:"llm_available"`
	EmbeddingAvailable bool   `json:"embedding_available"`
	IndexAvailable     bool   `json:"index_available"`
	VectorBackend      string `json:"vector_backend"`
	Documents          int    `json:"documents"`
	Passages           int    `json:"passages"`
	PrimaryReference   bool   `json:"primary_reference"`
}
