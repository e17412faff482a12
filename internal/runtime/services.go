package runtime

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Services holds the process-wide AI services and the backends chosen at startup.
// LLM and embedding services may be nil; callers degrade accordingly.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	embeddingCache   driven.EmbeddingCache
	lock             driven.DistributedLock

	// closers are released in reverse registration order on Close
	closers []namedCloser
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// LLMService returns the current LLM service (may be nil)
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmService
}

// EmbeddingCache returns the embedding cache (may be nil)
func (s *Services) EmbeddingCache() driven.EmbeddingCache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingCache
}

// Lock returns the distributed lock guarding index rebuilds (may be nil)
func (s *Services) Lock() driven.DistributedLock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lock
}

// SetEmbeddingService replaces the embedding service, closing the old one
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetLLMService replaces the LLM service, closing the old one
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil {
		_ = s.llmService.Close()
	}

	s.llmService = svc
	s.config.SetLLMAvailable(svc != nil)
}

// SetEmbeddingCache sets the embedding cache
func (s *Services) SetEmbeddingCache(cache driven.EmbeddingCache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddingCache = cache
}

// SetLock sets the distributed lock
func (s *Services) SetLock(lock driven.DistributedLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lock = lock
}

// AddCloser registers a resource (database, redis client) to release on Close
func (s *Services) AddCloser(name string, c io.Closer) {
	if c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, namedCloser{name: name, closer: c})
}

// Close shuts down all services and registered resources
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.llmService != nil {
		_ = s.llmService.Close()
		s.llmService = nil
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.closer.Close(); err != nil {
			slog.Warn("failed to close resource", "resource", c.name, "error", err)
		}
	}
	s.closers = nil
	s.embeddingCache = nil
	s.lock = nil

	s.config.SetEmbeddingAvailable(false)
	s.config.SetLLMAvailable(false)
	s.config.SetIndexAvailable(false)

	return nil
}

// ValidateAndSetEmbedding health-checks svc before installing it.
// On failure svc is closed and the previous service is left in place.
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetLLM pings svc before installing it.
// On failure svc is closed and the previous service is left in place.
func (s *Services) ValidateAndSetLLM(ctx context.Context, svc driven.LLMService) error {
	if svc == nil {
		s.SetLLMService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetLLMService(svc)
	return nil
}
