package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Ollama defaults
const (
	DefaultOllamaEmbeddingModel = "nomic-embed-text"
	DefaultOllamaLLMModel       = "llama3.2"
	DefaultOllamaTimeout        = 120 * time.Second
)

var ollamaModelDimensions = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

// Verify interface compliance
var (
	_ driven.EmbeddingService = (*OllamaEmbedding)(nil)
	_ driven.LLMService       = (*OllamaLLM)(nil)
)

// newOllamaClient connects to baseURL, or to OLLAMA_HOST when baseURL is empty
func newOllamaClient(baseURL string, timeout time.Duration) (*api.Client, *http.Client, error) {
	host := envconfig.Host()
	if baseURL != "" {
		parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid Ollama URL %q: %w", baseURL, err)
		}
		host = parsed
	}
	if timeout <= 0 {
		timeout = DefaultOllamaTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	return api.NewClient(host, httpClient), httpClient, nil
}

// OllamaEmbedding implements EmbeddingService against a local Ollama server
type OllamaEmbedding struct {
	client     *api.Client
	http       *http.Client
	model      string
	dimensions int
}

// NewOllamaEmbedding creates an Ollama embedding service
func NewOllamaEmbedding(baseURL, model string) (driven.EmbeddingService, error) {
	client, httpClient, err := newOllamaClient(baseURL, 0)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultOllamaEmbeddingModel
	}
	dimensions, ok := ollamaModelDimensions[model]
	if !ok {
		dimensions = 768
	}
	return &OllamaEmbedding{client: client, http: httpClient, model: model, dimensions: dimensions}, nil
}

// Embed generates embeddings for multiple texts in one request
func (e *OllamaEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("%w: ollama embed: %v", domain.ErrServiceUnavailable, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// EmbedQuery generates an embedding for a search query
func (e *OllamaEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding dimension size
func (e *OllamaEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *OllamaEmbedding) Model() string {
	return e.model
}

// HealthCheck pings the Ollama server
func (e *OllamaEmbedding) HealthCheck(ctx context.Context) error {
	if err := e.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	return nil
}

// Close releases idle connections
func (e *OllamaEmbedding) Close() error {
	e.http.CloseIdleConnections()
	return nil
}

// OllamaLLM implements LLMService with the Ollama chat API
type OllamaLLM struct {
	client *api.Client
	http   *http.Client
	model  string
}

// NewOllamaLLM creates an Ollama LLM service
func NewOllamaLLM(baseURL, model string, timeout time.Duration) (driven.LLMService, error) {
	client, httpClient, err := newOllamaClient(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultOllamaLLMModel
	}
	return &OllamaLLM{client: client, http: httpClient, model: model}, nil
}

// Complete runs a non-streaming chat request
func (l *OllamaLLM) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	messages := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, api.Message{Role: domain.RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: m.Role, Content: m.Content})
	}

	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	stream := false

	var reply strings.Builder
	err := l.client.Chat(ctx, &api.ChatRequest{
		Model:    l.model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: ollama chat: %v", domain.ErrServiceUnavailable, err)
	}
	return strings.TrimSpace(reply.String()), nil
}

// Model returns the model name being used
func (l *OllamaLLM) Model() string {
	return l.model
}

// Ping checks the Ollama server is up
func (l *OllamaLLM) Ping(ctx context.Context) error {
	if err := l.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	return nil
}

// Close releases idle connections
func (l *OllamaLLM) Close() error {
	l.http.CloseIdleConnections()
	return nil
}
