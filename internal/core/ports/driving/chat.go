package driving

import (
	"context"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// ChatService answers conversational requests about estimates
type ChatService interface {
	// Chat replies to a message and attaches an estimate when one can be produced
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error)
}
