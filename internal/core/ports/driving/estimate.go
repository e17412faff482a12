package driving

import (
	"context"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// EstimateService produces time and cost estimates from requirements
type EstimateService interface {
	// Estimate runs the full pipeline: extraction, normalization, reconciliation.
	// Returns ErrMissingRequirements, ErrUnsupportedFileType or ErrVagueRequirements
	// for input the pipeline cannot act on.
	Estimate(ctx context.Context, req domain.EstimateRequest) (*domain.EstimateResult, error)

	// Features returns the document-derived feature catalog (may be empty)
	Features(ctx context.Context) []domain.CatalogFeature
}
