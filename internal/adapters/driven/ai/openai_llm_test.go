package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

func TestNewOpenAILLM(t *testing.T) {
	if _, err := NewOpenAILLM("", "", "", 0); err == nil {
		t.Error("expected error for empty API key")
	}

	svc, err := NewOpenAILLM("sk-test", "", "", 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Model() != DefaultOpenAILLMModel {
		t.Errorf("expected default model, got %s", svc.Model())
	}
	if got := svc.(*OpenAILLM).client.client.Timeout; got != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", got)
	}
}

func TestOpenAILLM_Complete(t *testing.T) {
	var got chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "  [{\"name\": \"Login\"}]\n"}, "finish_reason": "stop"}]}`))
	}))
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "gpt-test", server.URL, 0)
	reply, err := svc.Complete(context.Background(), driven.CompletionRequest{
		System: "be terse",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "hi"},
			{Role: domain.RoleAssistant, Content: "hello"},
			{Role: domain.RoleUser, Content: "estimate login"},
		},
		Temperature: 0.1,
		MaxTokens:   2500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != `[{"name": "Login"}]` {
		t.Errorf("unexpected reply %q", reply)
	}

	if got.Model != "gpt-test" || got.MaxTokens != 2500 || got.Temperature != 0.1 {
		t.Errorf("unexpected request %+v", got)
	}
	if len(got.Messages) != 4 || got.Messages[0].Role != domain.RoleSystem || got.Messages[0].Content != "be terse" {
		t.Errorf("expected system message first, got %+v", got.Messages)
	}
}

func TestOpenAILLM_ZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "no"}}]}`))
	}))
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "", server.URL, 0)
	if _, err := svc.Complete(context.Background(), driven.Prompt("", "vague?", 0, 5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["temperature"]; !ok {
		t.Error("expected temperature to be sent even when zero")
	}
}

func TestOpenAILLM_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "", server.URL, 0)
	if _, err := svc.Complete(context.Background(), driven.Prompt("", "x", 0, 5)); err == nil {
		t.Error("expected error for empty choices")
	}
	if err := svc.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail")
	}
}
