package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

func TestNewGemini_RequiresAPIKey(t *testing.T) {
	if _, err := NewGeminiLLM(context.Background(), "", "", ""); err == nil {
		t.Error("expected error for empty API key")
	}
	if _, err := NewGeminiEmbedding(context.Background(), "", "", ""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestGeminiEmbedding_Dimensions(t *testing.T) {
	svc, err := NewGeminiEmbedding(context.Background(), "g-test", "gemini-embedding-001", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Dimensions() != 3072 {
		t.Errorf("expected 3072 dimensions, got %d", svc.Dimensions())
	}
	if svc.Model() != "gemini-embedding-001" {
		t.Errorf("unexpected model %s", svc.Model())
	}
}

func TestGeminiLLM_Complete(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "<b>Login</b>: 16-20 hours"}]}}]}`))
	}))
	defer server.Close()

	svc, err := NewGeminiLLM(context.Background(), "g-test", "", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Model() != DefaultGeminiLLMModel {
		t.Errorf("expected default model, got %s", svc.Model())
	}

	reply, err := svc.Complete(context.Background(), driven.CompletionRequest{
		System: "be terse",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "login?"},
			{Role: domain.RoleAssistant, Content: "which kind?"},
			{Role: domain.RoleUser, Content: "email"},
		},
		Temperature: 0.2,
		MaxTokens:   600,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "<b>Login</b>: 16-20 hours" {
		t.Errorf("unexpected reply %q", reply)
	}
	if !strings.HasSuffix(path, DefaultGeminiLLMModel+":generateContent") {
		t.Errorf("unexpected request path %s", path)
	}
}
