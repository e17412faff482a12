package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-estimator/internal/runtime"
)

// IndexRebuildLock is the distributed lock name guarding index rebuilds
const IndexRebuildLock = "context-index-rebuild"

// Semantic context limits
const (
	semanticTopK          = 8
	semanticPartSeparator = "\n\n---\n\n"
	semanticMinRemainder  = 300
)

// ErrIndexLockTimeout is returned when another instance held the rebuild lock
// for the whole wait and left no passages behind
var ErrIndexLockTimeout = errors.New("timed out waiting for index rebuild lock")

// ContextIndexConfig holds configuration for the context index
type ContextIndexConfig struct {
	// Pipeline splits documents into passages
	Pipeline driven.PostProcessorPipeline

	// BatchSize is the number of passages per embedding call
	BatchSize int

	// Concurrency bounds embedding calls in flight
	Concurrency int

	// LockWait is how long to wait for another instance's rebuild
	LockWait time.Duration

	// LockTTL bounds how long a crashed rebuild can hold the lock
	LockTTL time.Duration

	// LockPoll is the interval between lock attempts
	LockPoll time.Duration

	Logger *slog.Logger
}

// ContextIndex ranks document passages against a query by embedding similarity.
// It is built once at startup; a failed build leaves it unavailable and
// callers fall back to keyword scoring.
type ContextIndex struct {
	store    driven.VectorStore
	services *runtime.Services
	pipeline driven.PostProcessorPipeline
	cfg      ContextIndexConfig
	logger   *slog.Logger

	available atomic.Bool
	passages  atomic.Int64
}

// NewContextIndex creates a context index over a vector store
func NewContextIndex(store driven.VectorStore, services *runtime.Services, cfg ContextIndexConfig) *ContextIndex {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = 30 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	if cfg.LockPoll <= 0 {
		cfg.LockPoll = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextIndex{
		store:    store,
		services: services,
		pipeline: cfg.Pipeline,
		cfg:      cfg,
		logger:   logger,
	}
}

// Available reports whether Build succeeded
func (i *ContextIndex) Available() bool {
	return i.available.Load()
}

// Count returns the number of indexed passages
func (i *ContextIndex) Count() int {
	return int(i.passages.Load())
}

// Build chunks, embeds and stores every document. On any failure the index is
// marked unavailable and the previous passage set is left untouched.
func (i *ContextIndex) Build(ctx context.Context, docs []*domain.Document) error {
	err := i.build(ctx, docs)
	if err != nil {
		i.setAvailable(false, 0)
		i.logger.Warn("context index unavailable, keyword fallback in use", "error", err)
	}
	return err
}

func (i *ContextIndex) build(ctx context.Context, docs []*domain.Document) error {
	embedder := i.services.EmbeddingService()
	if embedder == nil {
		return fmt.Errorf("%w: no embedding service configured", domain.ErrIndexUnavailable)
	}
	if i.pipeline == nil {
		return fmt.Errorf("%w: no passage pipeline configured", domain.ErrIndexUnavailable)
	}

	lock := i.services.Lock()
	if lock != nil {
		acquired, err := i.acquire(ctx, lock)
		if err != nil {
			return err
		}
		if !acquired {
			return i.adoptExisting(ctx)
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx), IndexRebuildLock); err != nil {
				i.logger.Warn("failed to release index rebuild lock", "error", err)
			}
		}()
	}

	start := time.Now()
	passages := i.passagesFor(docs)
	if len(passages) == 0 {
		return fmt.Errorf("%w: no passages to index", domain.ErrIndexUnavailable)
	}

	if err := i.embed(ctx, embedder, passages); err != nil {
		return fmt.Errorf("embed passages: %w", err)
	}
	if err := i.store.Replace(ctx, passages); err != nil {
		return fmt.Errorf("store passages: %w", err)
	}

	i.setAvailable(true, len(passages))
	i.logger.Info("context index built",
		"documents", len(docs),
		"passages", len(passages),
		"model", embedder.Model(),
		"duration", time.Since(start))
	return nil
}

// acquire waits up to LockWait for the rebuild lock. A lock backend error is
// logged and the rebuild proceeds unlocked.
func (i *ContextIndex) acquire(ctx context.Context, lock driven.DistributedLock) (bool, error) {
	deadline := time.Now().Add(i.cfg.LockWait)
	for {
		acquired, err := lock.Acquire(ctx, IndexRebuildLock, i.cfg.LockTTL)
		if err != nil {
			i.logger.Warn("index rebuild lock unavailable, building without it", "error", err)
			return true, nil
		}
		if acquired {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		i.logger.Debug("index rebuild lock held by another instance, waiting")

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(i.cfg.LockPoll):
		}
	}
}

// adoptExisting uses the passages another instance wrote to a shared store
func (i *ContextIndex) adoptExisting(ctx context.Context) error {
	n, err := i.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count passages: %w", err)
	}
	if n == 0 {
		return ErrIndexLockTimeout
	}
	i.setAvailable(true, n)
	i.logger.Info("using context index built by another instance", "passages", n)
	return nil
}

func (i *ContextIndex) passagesFor(docs []*domain.Document) []*domain.Passage {
	var passages []*domain.Passage
	for _, doc := range docs {
		for _, chunk := range i.pipeline.Process(doc.Text) {
			passages = append(passages, &domain.Passage{
				ID:         fmt.Sprintf("%s#%d", doc.ID, chunk.Position),
				DocumentID: doc.ID,
				Position:   chunk.Position,
				Text:       chunk.Content,
			})
		}
	}
	return passages
}

// embed fills passage embeddings, serving what it can from the cache and
// embedding the rest in concurrent batches
func (i *ContextIndex) embed(ctx context.Context, embedder driven.EmbeddingService, passages []*domain.Passage) error {
	keys := make([]string, len(passages))
	for n, p := range passages {
		keys[n] = embeddingKey(embedder.Model(), p.Text)
	}

	cache := i.services.EmbeddingCache()
	if cache != nil {
		cached, err := cache.GetMany(ctx, keys)
		if err != nil {
			i.logger.Warn("embedding cache read failed", "error", err)
		}
		for n, p := range passages {
			if v, ok := cached[keys[n]]; ok {
				p.Embedding = v
			}
		}
	}

	var missing []int
	for n, p := range passages {
		if p.Embedding == nil {
			missing = append(missing, n)
		}
	}
	i.logger.Debug("embedding passages", "total", len(passages), "cached", len(passages)-len(missing))
	if len(missing) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.cfg.Concurrency)
	for start := 0; start < len(missing); start += i.cfg.BatchSize {
		batch := missing[start:min(start+i.cfg.BatchSize, len(missing))]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for n, idx := range batch {
				texts[n] = passages[idx].Text
			}
			vectors, err := embedder.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(vectors) != len(texts) {
				return fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(texts))
			}
			for n, idx := range batch {
				passages[idx].Embedding = vectors[n]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cache != nil {
		fresh := make(map[string][]float32, len(missing))
		for _, idx := range missing {
			fresh[keys[idx]] = passages[idx].Embedding
		}
		if err := cache.SetMany(ctx, fresh); err != nil {
			i.logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return nil
}

func (i *ContextIndex) setAvailable(available bool, passages int) {
	i.available.Store(available)
	i.passages.Store(int64(passages))
	if cfg := i.services.Config(); cfg != nil {
		cfg.SetIndexAvailable(available)
	}
}

// Query returns the topK passages most similar to text
func (i *ContextIndex) Query(ctx context.Context, text string, topK int) ([]*domain.ScoredPassage, error) {
	if !i.Available() {
		return nil, domain.ErrIndexUnavailable
	}
	embedder := i.services.EmbeddingService()
	if embedder == nil {
		return nil, domain.ErrIndexUnavailable
	}

	vector, err := embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return i.store.Search(ctx, vector, topK)
}

// Context returns rendered semantic matches for query, or "" when the index
// is unavailable, the query fails or nothing matches
func (i *ContextIndex) Context(ctx context.Context, query string, budget int) string {
	if !i.Available() {
		return ""
	}
	results, err := i.Query(ctx, query, semanticTopK)
	if err != nil {
		i.logger.Warn("semantic search failed, using fallback", "error", err)
		return ""
	}
	return RenderSemantic(results, budget)
}

// RenderSemantic formats ranked passages as "[Doc: id | Relevance: 0.00]" parts.
// A part that does not fit is cut to the remaining budget when more than
// semanticMinRemainder bytes remain, and filling stops there.
func RenderSemantic(results []*domain.ScoredPassage, budget int) string {
	parts := make([]string, 0, len(results))
	used := 0
	for _, r := range results {
		if r == nil || r.Passage == nil {
			continue
		}
		text := r.Passage.Text
		header := fmt.Sprintf("[Doc: %s | Relevance: %.2f]\n", r.Passage.DocumentID, r.Score)
		if used+len(text) <= budget {
			parts = append(parts, header+text)
			used += len(text)
			continue
		}
		if remaining := budget - used; remaining > semanticMinRemainder {
			parts = append(parts, header+domain.Truncate(text, remaining))
		}
		break
	}
	return domain.Truncate(strings.Join(parts, semanticPartSeparator), budget)
}

func embeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + ":" + hex.EncodeToString(sum[:])
}
