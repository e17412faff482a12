package services

import (
	"context"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-estimator/internal/runtime"
)

// Ensure statusService implements StatusService
var _ driving.StatusService = (*statusService)(nil)

type statusService struct {
	version  string
	services *runtime.Services
	docs     *DocumentStore
	index    *ContextIndex
}

// NewStatusService creates a new StatusService. index may be nil.
func NewStatusService(version string, services *runtime.Services, docs *DocumentStore, index *ContextIndex) driving.StatusService {
	return &statusService{version: version, services: services, docs: docs, index: index}
}

// Status returns capability flags and corpus counts
func (s *statusService) Status(ctx context.Context) *domain.Status {
	cfg := s.services.Config()
	st := &domain.Status{
		Version:            s.version,
		LLMAvailable:       cfg.LLMAvailable(),
		EmbeddingAvailable: cfg.EmbeddingAvailable(),
		VectorBackend:      cfg.VectorBackend,
		Documents:          s.docs.Len(),
		PrimaryReference:   s.docs.PrimaryReference() != "",
	}
	if s.index != nil {
		st.IndexAvailable = s.index.Available()
		st.Passages = s.index.Count()
	}
	return st
}
