package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Gemini defaults
const (
	DefaultGeminiEmbeddingModel = "text-embedding-004"
	DefaultGeminiLLMModel       = "gemini-2.0-flash"
)

var geminiModelDimensions = map[string]int{
	"text-embedding-004":   768,
	"gemini-embedding-001": 3072,
}

// Verify interface compliance
var (
	_ driven.EmbeddingService = (*GeminiEmbedding)(nil)
	_ driven.LLMService       = (*GeminiLLM)(nil)
)

func newGeminiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// GeminiEmbedding implements EmbeddingService with the Gemini API
type GeminiEmbedding struct {
	client     *genai.Client
	model      string
	dimensions int
}

// NewGeminiEmbedding creates a Gemini embedding service
func NewGeminiEmbedding(ctx context.Context, apiKey, model, baseURL string) (driven.EmbeddingService, error) {
	client, err := newGeminiClient(ctx, apiKey, baseURL)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultGeminiEmbeddingModel
	}
	dimensions, ok := geminiModelDimensions[model]
	if !ok {
		dimensions = 768
	}
	return &GeminiEmbedding{client: client, model: model, dimensions: dimensions}, nil
}

// Embed generates embeddings for multiple texts in one batch request
func (e *GeminiEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(result.Embeddings), len(texts))
	}

	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

// EmbedQuery generates an embedding for a search query
func (e *GeminiEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding dimension size
func (e *GeminiEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *GeminiEmbedding) Model() string {
	return e.model
}

// HealthCheck embeds a short test string
func (e *GeminiEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close is a no-op
func (e *GeminiEmbedding) Close() error {
	return nil
}

// GeminiLLM implements LLMService with the Gemini API
type GeminiLLM struct {
	client *genai.Client
	model  string
}

// NewGeminiLLM creates a Gemini LLM service
func NewGeminiLLM(ctx context.Context, apiKey, model, baseURL string) (driven.LLMService, error) {
	client, err := newGeminiClient(ctx, apiKey, baseURL)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultGeminiLLMModel
	}
	return &GeminiLLM{client: client, model: model}, nil
}

// Complete maps the conversation onto Gemini contents; assistant turns use the model role
func (l *GeminiLLM) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := l.client.Models.GenerateContent(ctx, l.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// Model returns the model name being used
func (l *GeminiLLM) Model() string {
	return l.model
}

// Ping sends a minimal completion
func (l *GeminiLLM) Ping(ctx context.Context) error {
	_, err := l.Complete(ctx, driven.Prompt("", "ping", 0, 1))
	return err
}

// Close is a no-op
func (l *GeminiLLM) Close() error {
	return nil
}
