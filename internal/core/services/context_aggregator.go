package services

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// Extraction context part budgets
const (
	primaryPartBudget       = 4000
	semanticPartBudget      = 4000
	supplementaryPartBudget = 2000
)

// ContextAggregator assembles a bounded context string for a query from the
// context index, keyword scoring and the primary reference
type ContextAggregator struct {
	docs    *DocumentStore
	index   *ContextIndex
	keyword KeywordScorer
	logger  *slog.Logger
}

// NewContextAggregator creates a context aggregator. index may be nil.
func NewContextAggregator(docs *DocumentStore, index *ContextIndex, logger *slog.Logger) *ContextAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextAggregator{docs: docs, index: index, logger: logger}
}

// Context returns the first non-empty of semantic matches, keyword matches
// and the primary reference, cut to budget bytes
func (a *ContextAggregator) Context(ctx context.Context, query string, budget int) string {
	if text := a.semantic(ctx, query, budget); text != "" {
		return text
	}
	if text := a.keyword.Context(query, a.docs.All(), budget); text != "" {
		a.logger.Debug("using keyword context", "chars", len(text))
		return text
	}
	return domain.Truncate(a.docs.PrimaryReference(), budget)
}

// ExtractionContext returns the labeled context used for feature extraction.
// The primary reference always comes first; semantic and keyword parts follow
// unless their text is already covered.
func (a *ContextAggregator) ExtractionContext(ctx context.Context, query string, budget int) string {
	var bundle domain.ContextBundle

	bundle.Add(domain.ContextPart{
		Label: domain.ContextLabelPrimary,
		Score: 1,
		Text:  domain.Truncate(a.docs.PrimaryReference(), primaryPartBudget),
	})
	bundle.Add(domain.ContextPart{
		Label: domain.ContextLabelSemantic,
		Text:  a.semantic(ctx, query, semanticPartBudget),
	})
	bundle.Add(domain.ContextPart{
		Label: domain.ContextLabelSupplementary,
		Text:  a.keyword.Context(query, a.docs.All(), supplementaryPartBudget),
	})

	return bundle.Render(budget)
}

func (a *ContextAggregator) semantic(ctx context.Context, query string, budget int) string {
	if a.index == nil {
		return ""
	}
	return a.index.Context(ctx, query, budget)
}
