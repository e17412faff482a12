package driving

import (
	"context"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// StatusService reports what the running instance can do
type StatusService interface {
	// Status returns capability flags and corpus counts
	Status(ctx context.Context) *domain.Status
}
