package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-estimator/internal/runtime"
)

// Extraction stage names reported in domain.Extraction.Stage
const (
	StageUnavailable      = "unavailable"
	StageVague            = "vague"
	StageFallbackPrompt   = "fallback-prompt"
	StageReferenceLookup  = "reference-lookup"
	StageGeneralKnowledge = "general-knowledge"
	StageGeneric          = "generic"
)

// Extraction settings
const (
	extractionContextBudget = 12000
	extractionTemperature   = 0.1
	extractionMaxTokens     = 2500
	lookupMaxTokens         = 500
	generalMaxTokens        = 500

	generalMinHours   = 8
	generalMaxHours   = 160
	genericNameLength = 50

	referenceDescription = "Based on the primary reference"
)

// extractionStage is one step of the extraction cascade. A stage returns
// nothing when it cannot produce estimates and the next stage runs.
type extractionStage struct {
	name string
	run  func(ctx context.Context, in *extractionInput) ([]domain.RawEstimate, string)
}

type extractionInput struct {
	query   string
	context string
	llm     driven.LLMService
}

// Extractor turns free-text requirements into normalized feature estimates.
// It always terminates with a list: empty only for vague queries or when no
// LLM is configured.
type Extractor struct {
	services   *runtime.Services
	aggregator *ContextAggregator
	docs       *DocumentStore
	logger     *slog.Logger
	stages     []extractionStage
}

// NewExtractor creates an extractor
func NewExtractor(services *runtime.Services, aggregator *ContextAggregator, docs *DocumentStore, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{
		services:   services,
		aggregator: aggregator,
		docs:       docs,
		logger:     logger,
	}
	e.stages = []extractionStage{
		{name: "primary", run: e.primaryStage},
		{name: StageFallbackPrompt, run: e.fallbackStage},
		{name: StageReferenceLookup, run: e.referenceStage},
		{name: StageGeneralKnowledge, run: e.generalStage},
		{name: StageGeneric, run: e.genericStage},
	}
	return e
}

// Extract classifies query and, when actionable, runs the extraction cascade.
// Only context cancellation is returned as an error.
func (e *Extractor) Extract(ctx context.Context, query string) (*domain.Extraction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrMissingRequirements
	}

	llm := e.services.LLMService()
	if llm == nil {
		e.logger.Warn("extraction unavailable, using generic estimate", "error", domain.ErrLLMUnavailable)
		return &domain.Extraction{Class: domain.QueryActionable, Stage: StageUnavailable}, nil
	}

	if e.isVague(ctx, llm, query) {
		e.logger.Info("requirements classified as vague", "query_chars", len(query))
		return &domain.Extraction{Class: domain.QueryVague, Stage: StageVague}, nil
	}

	in := &extractionInput{
		query:   query,
		context: e.aggregator.ExtractionContext(ctx, query, extractionContextBudget),
		llm:     llm,
	}
	for _, stage := range e.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, label := stage.run(ctx, in)
		if len(raw) == 0 {
			e.logger.Debug("extraction stage produced nothing", "stage", stage.name)
			continue
		}
		features := Normalize(raw)
		e.logger.Info("extracted features", "stage", label, "features", len(features))
		return &domain.Extraction{Class: domain.QueryActionable, Features: features, Stage: label}, nil
	}

	// genericStage always yields a feature, so this is unreachable in practice
	return &domain.Extraction{Class: domain.QueryActionable, Stage: StageGeneric}, nil
}

// isVague asks the model whether query describes anything buildable.
// Any failure counts as actionable.
func (e *Extractor) isVague(ctx context.Context, llm driven.LLMService, query string) bool {
	reply, err := llm.Complete(ctx, driven.Prompt(trivialitySystemPrompt, trivialityPrompt(query), 0, 5))
	if err != nil {
		e.logger.Warn("triviality check failed, treating as actionable", "error", err)
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "yes")
}

func (e *Extractor) primaryStage(ctx context.Context, in *extractionInput) ([]domain.RawEstimate, string) {
	reply, ok := e.complete(ctx, in.llm, "primary", driven.Prompt(
		extractionSystemPrompt,
		extractionPrompt(in.query, in.context),
		extractionTemperature,
		extractionMaxTokens,
	))
	if !ok {
		return nil, ""
	}
	raw, strategy := ParseFeatures(reply)
	return raw, strategy
}

func (e *Extractor) fallbackStage(ctx context.Context, in *extractionInput) ([]domain.RawEstimate, string) {
	reply, ok := e.complete(ctx, in.llm, StageFallbackPrompt, driven.Prompt(
		strictJSONSystemPrompt,
		strictExtractionPrompt(in.query, in.context),
		extractionTemperature,
		extractionMaxTokens,
	))
	if !ok {
		return nil, ""
	}
	raw, _ := ParseFeatures(reply)
	return raw, StageFallbackPrompt
}

// referenceStage asks for the single closest primary reference feature. A
// name found in the parsed schema takes the schema range; otherwise the
// returned hours get a +/- SingleValueSpread range.
func (e *Extractor) referenceStage(ctx context.Context, in *extractionInput) ([]domain.RawEstimate, string) {
	reference := e.docs.PrimaryReference()
	if strings.TrimSpace(reference) == "" {
		return nil, ""
	}
	reply, ok := e.complete(ctx, in.llm, StageReferenceLookup, driven.Prompt(
		referenceLookupSystemPrompt,
		referenceLookupPrompt(in.query, reference),
		extractionTemperature,
		lookupMaxTokens,
	))
	if !ok {
		return nil, ""
	}

	var match struct {
		Name  string          `json:"name"`
		Hours json.RawMessage `json:"hours"`
	}
	if err := json.Unmarshal([]byte(objectSpan(reply)), &match); err != nil || strings.TrimSpace(match.Name) == "" {
		return nil, ""
	}

	raw := domain.RawEstimate{
		Name:        strings.TrimSpace(match.Name),
		Description: referenceDescription,
		Category:    domain.DefaultFeatureCategory,
		Complexity:  string(domain.ComplexityMedium),
	}
	if feature, found := e.docs.Schema().Lookup(match.Name); found && feature.MaxHours > 0 {
		raw.Name = feature.Name
		raw.MinHours = &feature.MinHours
		raw.MaxHours = &feature.MaxHours
		return []domain.RawEstimate{raw}, StageReferenceLookup
	}

	hours, ok := domain.ParseHours(match.Hours)
	if !ok || hours <= 0 {
		return nil, ""
	}
	lo := hours * (1 - domain.SingleValueSpread)
	hi := hours * (1 + domain.SingleValueSpread)
	raw.MinHours = &lo
	raw.MaxHours = &hi
	return []domain.RawEstimate{raw}, StageReferenceLookup
}

// generalStage asks for one estimate from general knowledge, clamped into
// [generalMinHours, generalMaxHours]
func (e *Extractor) generalStage(ctx context.Context, in *extractionInput) ([]domain.RawEstimate, string) {
	reply, ok := e.complete(ctx, in.llm, StageGeneralKnowledge, driven.Prompt(
		generalKnowledgeSystemPrompt,
		generalKnowledgePrompt(in.query),
		extractionTemperature,
		generalMaxTokens,
	))
	if !ok {
		return nil, ""
	}

	var raw domain.RawEstimate
	if err := json.Unmarshal([]byte(objectSpan(reply)), &raw); err != nil || !isEstimate(raw) {
		return nil, ""
	}
	for _, v := range []*float64{raw.MinHours, raw.MaxHours, raw.Hours} {
		if v != nil {
			*v = min(max(*v, generalMinHours), generalMaxHours)
		}
	}
	return []domain.RawEstimate{raw}, StageGeneralKnowledge
}

// genericStage names a single medium feature after the query. It never fails.
func (e *Extractor) genericStage(_ context.Context, in *extractionInput) ([]domain.RawEstimate, string) {
	return []domain.RawEstimate{GenericEstimate(in.query)}, StageGeneric
}

// GenericEstimate is the deterministic last-resort estimate for a query
func GenericEstimate(query string) domain.RawEstimate {
	name := strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(name) > genericNameLength {
		name = strings.TrimSpace(string([]rune(name)[:genericNameLength]))
	}
	return domain.RawEstimate{
		Name:        name,
		Description: "General estimate for the requested work",
		Complexity:  string(domain.ComplexityMedium),
		Category:    domain.DefaultFeatureCategory,
	}
}

// complete performs one LLM call for a stage, logging transport failures
func (e *Extractor) complete(ctx context.Context, llm driven.LLMService, stage string, req driven.CompletionRequest) (string, bool) {
	reply, err := llm.Complete(ctx, req)
	if err != nil {
		e.logger.Warn("extraction stage LLM call failed", "stage", stage, "error", err)
		return "", false
	}
	return reply, true
}

// objectSpan returns the text between the first '{' and the last '}'
func objectSpan(text string) string {
	text = stripFences(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}
