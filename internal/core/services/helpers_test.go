package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-estimator/internal/extractors"
	"github.com/custodia-labs/sercha-estimator/internal/postprocessors"
	"github.com/custodia-labs/sercha-estimator/internal/runtime"
)

const testReference = `{
  "metadata": {"version": 2},
  "Authentication": {
    "Login": {"min": 16, "max": 20},
    "Social Login": {"min": 10, "max": 14}
  },
  "Payments": {
    "Stripe Integration": {"min": 24, "max": 30}
  },
  "estimation_rules": ["Prefer the optimistic end of each range"]
}`

const testOverview = `Enatega is a multi-vendor food delivery platform.
The team has 15 full-stack developers, 2 DevOps engineers and 3 QA specialists.
Apps: customer app, rider app, restaurant app and an admin dashboard.`

const testExamples = `User: How long would a loyalty program take?
Bot: <b>Loyalty Program</b>: 40-60 hours<br/>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultTestFiles() map[string]string {
	return map[string]string{
		"Estimates.txt": testReference,
		"overview.txt":  testOverview,
		"examples.txt":  testExamples,
	}
}

// newTestStore loads a document store from in-memory text files
func newTestStore(t *testing.T, files map[string]string) *DocumentStore {
	t.Helper()
	fsys := fstest.MapFS{}
	names := make([]string, 0, len(files))
	for name, text := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(text)}
		names = append(names, name)
	}
	sort.Strings(names)

	store := NewDocumentStore(fsys, extractors.DefaultRegistry(), DocumentStoreConfig{
		Files:            names,
		PrimaryReference: "Estimates.txt",
		ExamplesDocument: "examples.txt",
		Logger:           testLogger(),
	})
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	return store
}

// newTestServices creates runtime services; nil mocks are left unset
func newTestServices(llm *mocks.MockLLMService, embedder *mocks.MockEmbeddingService) *runtime.Services {
	services := runtime.NewServices(domain.NewRuntimeConfig(domain.VectorBackendMemory))
	if llm != nil {
		services.SetLLMService(llm)
	}
	if embedder != nil {
		services.SetEmbeddingService(embedder)
	}
	return services
}

func newTestIndex(services *runtime.Services, store *mocks.MockVectorStore) *ContextIndex {
	return NewContextIndex(store, services, ContextIndexConfig{
		Pipeline: postprocessors.PassagePipeline(postprocessors.DefaultChunkConfig()),
		Logger:   testLogger(),
	})
}

// testPipeline wires every service over the default test corpus.
// The context index is nil unless withIndex is set.
type testPipeline struct {
	services   *runtime.Services
	docs       *DocumentStore
	index      *ContextIndex
	aggregator *ContextAggregator
	extractor  *Extractor
	narrative  *NarrativeGenerator
	estimates  *estimateService
}

func newTestPipeline(t *testing.T, llm *mocks.MockLLMService, withIndex bool) *testPipeline {
	t.Helper()
	p := &testPipeline{docs: newTestStore(t, defaultTestFiles())}

	var embedder *mocks.MockEmbeddingService
	if withIndex {
		embedder = mocks.NewMockEmbeddingService()
	}
	p.services = newTestServices(llm, embedder)

	if withIndex {
		p.index = newTestIndex(p.services, mocks.NewMockVectorStore())
		require.NoError(t, p.index.Build(context.Background(), p.docs.All()))
	}

	p.aggregator = NewContextAggregator(p.docs, p.index, testLogger())
	p.extractor = NewExtractor(p.services, p.aggregator, p.docs, testLogger())
	p.narrative = NewNarrativeGenerator(p.services, p.aggregator, p.docs, testLogger())
	p.estimates = NewEstimateService(
		p.extractor,
		NewReconciler(DefaultBufferPercentage),
		p.narrative,
		extractors.DefaultRegistry(),
		p.docs,
		EstimateServiceConfig{Logger: testLogger()},
	).(*estimateService)
	return p
}
