package driven

import (
	"context"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// CompletionRequest is a single round-trip to a chat-style model
type CompletionRequest struct {
	// System is the system instruction (optional)
	System string

	// Messages is the conversation, oldest first. The last message is the prompt.
	Messages []domain.ChatMessage

	// Temperature controls sampling; extraction stages use values near zero
	Temperature float64

	// MaxTokens caps the response length
	MaxTokens int
}

// Prompt builds a request holding a single user message
func Prompt(system, user string, temperature float64, maxTokens int) CompletionRequest {
	return CompletionRequest{
		System:      system,
		Messages:    []domain.ChatMessage{{Role: domain.RoleUser, Content: user}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// LLMService turns a prompt into text. The text is not guaranteed to be valid JSON
// even when the prompt asks for it.
type LLMService interface {
	// Complete performs one completion. Implementations do not retry.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
