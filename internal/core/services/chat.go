package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-estimator/internal/runtime"
)

// Chat settings
const (
	chatContextBudget = 2000
	chatTemperature   = 0.2
	chatMaxTokens     = 600
	greetingMaxWords  = 5
)

var (
	greetingKeywords   = []string{"hello", "hi", "hey", "greetings", "good morning", "good afternoon"}
	estimationKeywords = []string{
		"estimate", "cost", "price", "time", "hours", "budget", "timeline", "feature",
		"build", "develop", "implement", "authentication", "dashboard", "payment", "system",
	}
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// chatService implements the ChatService interface
type chatService struct {
	services   *runtime.Services
	aggregator *ContextAggregator
	docs       *DocumentStore
	estimates  driving.EstimateService
	logger     *slog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	services *runtime.Services,
	aggregator *ContextAggregator,
	docs *DocumentStore,
	estimates driving.EstimateService,
	logger *slog.Logger,
) driving.ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		services:   services,
		aggregator: aggregator,
		docs:       docs,
		estimates:  estimates,
		logger:     logger,
	}
}

// Chat answers one message. Greetings and off-topic openers get fixed replies;
// anything else goes to the model, and an estimate for the same message is
// attached when one can be produced.
func (s *chatService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	result := &domain.ChatResult{ConversationID: req.ConversationID}
	if result.ConversationID == "" {
		result.ConversationID = uuid.NewString()
	}

	llm := s.services.LLMService()
	switch {
	case llm == nil:
		s.logger.Warn("chat reply unavailable", "error", domain.ErrLLMUnavailable)
		result.Response = ChatNotConfiguredReply
	case isGreeting(message):
		result.Response = ChatGreetingReply
		return result, nil
	case !isEstimationQuery(message) && len(req.ConversationHistory) == 0:
		result.Response = ChatRedirectReply
		return result, nil
	default:
		result.Response = s.reply(ctx, llm, message, req.ConversationHistory)
	}

	estimate, err := s.estimates.Estimate(ctx, domain.EstimateRequest{Requirements: message})
	switch {
	case err == nil:
		totals := estimate.Totals.Rounded()
		result.Estimate = &totals
	case errors.Is(err, context.Canceled):
		return nil, err
	default:
		s.logger.Warn("could not attach estimate to chat reply", "error", err)
	}
	return result, nil
}

func (s *chatService) reply(ctx context.Context, llm driven.LLMService, message string, history []domain.ChatMessage) string {
	refs := s.aggregator.Context(ctx, message, chatContextBudget)

	messages := make([]domain.ChatMessage, 0, len(history)+1)
	for _, m := range history {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: message})

	text, err := llm.Complete(ctx, driven.CompletionRequest{
		System:      chatSystemPrompt(s.docs.Examples(), refs),
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		s.logger.Error("chat completion failed", "error", err)
		return fmt.Sprintf("I apologize, but I encountered an error: %v", err)
	}
	return FormatMarkup(text)
}

// isGreeting reports short messages that contain a greeting word
func isGreeting(message string) bool {
	lower := strings.ToLower(message)
	words := strings.Fields(lower)
	if len(words) >= greetingMaxWords {
		return false
	}
	for _, kw := range greetingKeywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		for _, w := range words {
			if strings.Trim(w, ".,!?") == kw {
				return true
			}
		}
	}
	return false
}

func isEstimationQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range estimationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
