package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Ensure OpenAILLM implements LLMService
var _ driven.LLMService = (*OpenAILLM)(nil)

// OpenAILLM implements LLMService using the chat completions API
type OpenAILLM struct {
	client *openAIClient
	model  string
}

// NewOpenAILLM creates a new OpenAI LLM service
func NewOpenAILLM(apiKey, model, baseURL string, timeout time.Duration) (driven.LLMService, error) {
	client, err := newOpenAIClient(apiKey, baseURL, timeout)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultOpenAILLMModel
	}
	return &OpenAILLM{client: client, model: model}, nil
}

type chatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Temperature float64              `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *openAIError `json:"error,omitempty"`
}

// Complete sends req to /chat/completions; the system prompt becomes the first message
func (l *OpenAILLM) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	messages := make([]domain.ChatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: req.System})
	}
	messages = append(messages, req.Messages...)

	var resp chatCompletionResponse
	err := l.client.post(ctx, "/chat/completions", chatCompletionRequest{
		Model:       l.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}, &resp, func() *openAIError { return resp.Error })
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Model returns the model name being used
func (l *OpenAILLM) Model() string {
	return l.model
}

// Ping sends a minimal completion
func (l *OpenAILLM) Ping(ctx context.Context) error {
	_, err := l.Complete(ctx, driven.Prompt("", "ping", 0, 1))
	return err
}

// Close releases idle connections
func (l *OpenAILLM) Close() error {
	l.client.close()
	return nil
}
