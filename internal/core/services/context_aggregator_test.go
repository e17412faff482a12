package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven/mocks"
)

func TestContextAggregator_Context(t *testing.T) {
	ctx := context.Background()

	t.Run("semantic first", func(t *testing.T) {
		p := newTestPipeline(t, nil, true)
		got := p.aggregator.Context(ctx, "rider app developers", 2000)
		assert.True(t, strings.HasPrefix(got, "[Doc: "), got)
		assert.LessOrEqual(t, len(got), 2000)
	})

	t.Run("keyword fallback", func(t *testing.T) {
		p := newTestPipeline(t, nil, false)
		got := p.aggregator.Context(ctx, "rider app developers", 2000)
		assert.True(t, strings.HasPrefix(got, "=== From overview.txt ==="), got)
	})

	t.Run("primary reference last", func(t *testing.T) {
		p := newTestPipeline(t, nil, false)
		got := p.aggregator.Context(ctx, "zzz qqq", 50)
		assert.Equal(t, testReference[:50], got)
	})

	t.Run("nothing at all", func(t *testing.T) {
		store := newTestStore(t, map[string]string{"overview.txt": testOverview})
		agg := NewContextAggregator(store, nil, testLogger())
		assert.Empty(t, agg.Context(ctx, "zzz qqq", 50))
	})
}

func TestContextAggregator_ExtractionContext(t *testing.T) {
	ctx := context.Background()

	t.Run("labels in order", func(t *testing.T) {
		p := newTestPipeline(t, nil, true)
		got := p.aggregator.ExtractionContext(ctx, "rider app developers", 12000)

		require.True(t, strings.HasPrefix(got, "=== PRIMARY REFERENCE ===\n"+testReference))
		semantic := strings.Index(got, "=== SEMANTIC MATCH ===")
		supplementary := strings.Index(got, "=== SUPPLEMENTARY ===")
		assert.Greater(t, semantic, 0)
		assert.Greater(t, supplementary, semantic)
	})

	t.Run("budget", func(t *testing.T) {
		p := newTestPipeline(t, nil, true)
		got := p.aggregator.ExtractionContext(ctx, "rider app developers", 100)
		assert.Len(t, got, 100)
	})

	t.Run("without index", func(t *testing.T) {
		p := newTestPipeline(t, nil, false)
		got := p.aggregator.ExtractionContext(ctx, "rider app developers", 12000)
		assert.NotContains(t, got, "=== SEMANTIC MATCH ===")
		assert.Contains(t, got, "=== SUPPLEMENTARY ===\n=== From overview.txt ===")
	})

	t.Run("without primary reference", func(t *testing.T) {
		store := newTestStore(t, map[string]string{"overview.txt": testOverview})
		services := newTestServices(nil, mocks.NewMockEmbeddingService())
		index := newTestIndex(services, mocks.NewMockVectorStore())
		require.NoError(t, index.Build(ctx, store.All()))

		agg := NewContextAggregator(store, index, testLogger())
		got := agg.ExtractionContext(ctx, "rider app developers", 12000)
		assert.True(t, strings.HasPrefix(got, "=== SEMANTIC MATCH ==="), got)
	})
}
