package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

const embeddingPrefix = "estimator:embedding:"

// DefaultEmbeddingTTL is how long cached vectors live
const DefaultEmbeddingTTL = 7 * 24 * time.Hour

// EmbeddingCache stores passage vectors in Redis as packed little-endian float32s
type EmbeddingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEmbeddingCache creates a Redis-backed embedding cache. A non-positive
// ttl uses DefaultEmbeddingTTL.
func NewEmbeddingCache(client *redis.Client, ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = DefaultEmbeddingTTL
	}
	return &EmbeddingCache{client: client, ttl: ttl}
}

// GetMany fetches vectors in one MGET; missing or corrupt entries are skipped
func (c *EmbeddingCache) GetMany(ctx context.Context, keys []string) (map[string][]float32, error) {
	found := make(map[string][]float32)
	if len(keys) == 0 {
		return found, nil
	}

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = embeddingPrefix + k
	}

	values, err := c.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return found, fmt.Errorf("failed to get embeddings: %w", err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if vec, ok := decodeVector([]byte(s)); ok {
			found[keys[i]] = vec
		}
	}
	return found, nil
}

// SetMany writes all entries in a single pipeline
func (c *EmbeddingCache) SetMany(ctx context.Context, entries map[string][]float32) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for k, vec := range entries {
		pipe.Set(ctx, embeddingPrefix+k, encodeVector(vec), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save embeddings: %w", err)
	}
	return nil
}

// Ping checks if the Redis backend is healthy.
func (c *EmbeddingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) ([]float32, bool) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, false
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, true
}
