package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driving"
)

// DefaultHourlyRate is used when a request carries no usable rate
const DefaultHourlyRate = 30.0

// Ensure estimateService implements EstimateService
var _ driving.EstimateService = (*estimateService)(nil)

// EstimateServiceConfig holds configuration for the estimate service
type EstimateServiceConfig struct {
	DefaultHourlyRate float64
	Logger            *slog.Logger
}

// estimateService implements the EstimateService interface
type estimateService struct {
	extractor  *Extractor
	reconciler *Reconciler
	narrative  *NarrativeGenerator
	files      driven.ExtractorRegistry
	docs       *DocumentStore
	rate       float64
	logger     *slog.Logger
}

// NewEstimateService creates a new EstimateService.
// files reads uploaded requirement documents.
func NewEstimateService(
	extractor *Extractor,
	reconciler *Reconciler,
	narrative *NarrativeGenerator,
	files driven.ExtractorRegistry,
	docs *DocumentStore,
	cfg EstimateServiceConfig,
) driving.EstimateService {
	rate := cfg.DefaultHourlyRate
	if rate <= 0 {
		rate = DefaultHourlyRate
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &estimateService{
		extractor:  extractor,
		reconciler: reconciler,
		narrative:  narrative,
		files:      files,
		docs:       docs,
		rate:       rate,
		logger:     logger,
	}
}

// Estimate runs extraction, normalization and reconciliation for one request
func (s *estimateService) Estimate(ctx context.Context, req domain.EstimateRequest) (*domain.EstimateResult, error) {
	start := time.Now()

	requirements, err := s.requirements(ctx, req)
	if err != nil {
		return nil, err
	}

	rate := req.HourlyRate
	if rate <= 0 {
		rate = s.rate
	}

	extraction, err := s.extractor.Extract(ctx, requirements)
	if err != nil {
		return nil, err
	}
	if extraction.Class == domain.QueryVague {
		return nil, domain.ErrVagueRequirements
	}

	features := extraction.Features
	if len(features) == 0 {
		features = Normalize([]domain.RawEstimate{GenericEstimate(requirements)})
	}

	lines := s.reconciler.BuildBreakdown(features, rate)
	totals := s.reconciler.Totals(lines)
	result := &domain.EstimateResult{
		Features:         features,
		Breakdown:        lines,
		Totals:           totals,
		HourlyRate:       rate,
		BufferPercentage: s.reconciler.Buffer() * 100,
		Timeline:         Timeline(totals.MidpointHours()),
		Assumptions:      s.reconciler.Assumptions(),
		Stage:            extraction.Stage,
	}
	if req.IncludeNarrative {
		result.Narrative = s.narrative.Render(ctx, requirements, result)
	}

	s.logger.Info("estimate complete",
		"features", len(features),
		"stage", extraction.Stage,
		"hours_min", domain.Round2(totals.TimeMin),
		"hours_max", domain.Round2(totals.TimeMax),
		"duration", time.Since(start))
	return result, nil
}

// requirements joins the typed requirements with the text of an uploaded file
func (s *estimateService) requirements(ctx context.Context, req domain.EstimateRequest) (string, error) {
	var parts []string
	if text := strings.TrimSpace(req.Requirements); text != "" {
		parts = append(parts, text)
	}

	if req.FileName != "" {
		if _, ok := domain.FormatFromFilename(req.FileName); !ok {
			return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, strings.ToLower(filepath.Ext(req.FileName)))
		}
		text, err := s.files.Extract(ctx, req.FileName, req.FileContent)
		if err != nil {
			return "", fmt.Errorf("%w: could not read %s: %v", domain.ErrInvalidInput, req.FileName, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", domain.ErrMissingRequirements
	}
	return strings.Join(parts, "\n\n"), nil
}

// Features returns the catalog derived from the primary reference schema
func (s *estimateService) Features(ctx context.Context) []domain.CatalogFeature {
	return s.docs.Schema().Catalog()
}
