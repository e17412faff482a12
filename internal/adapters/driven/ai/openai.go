package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// OpenAI defaults
const (
	DefaultOpenAIBaseURL        = "https://api.openai.com/v1"
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"
	DefaultOpenAILLMModel       = "gpt-4o-mini"
	DefaultOpenAITimeout        = 60 * time.Second
)

// openAIError is the error envelope returned by OpenAI-compatible APIs
type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// openAIClient posts JSON to an OpenAI-compatible API
type openAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newOpenAIClient(apiKey, baseURL string, timeout time.Duration) (*openAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultOpenAITimeout
	}
	return &openAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// post sends body to path and decodes the response into out.
// errorOf returns the API error decoded into out, if any.
func (c *openAIClient) post(ctx context.Context, path string, body any, out any, errorOf func() *openAIError) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: OpenAI API returned status %d", domain.ErrServiceUnavailable, resp.StatusCode)
		}
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if apiErr := errorOf(); apiErr != nil {
		return fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)", apiErr.Message, apiErr.Type, apiErr.Code)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: OpenAI API returned status %d", domain.ErrServiceUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *openAIClient) close() {
	c.client.CloseIdleConnections()
}
