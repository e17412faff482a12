package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// ErrNoScriptedResponse is returned when the mock runs out of queued responses
var ErrNoScriptedResponse = errors.New("mock llm: no scripted response")

type scriptedResponse struct {
	text string
	err  error
}

// MockLLMService is a scripted LLMService.
// RespondFn takes precedence; otherwise queued responses are returned in order.
type MockLLMService struct {
	mu        sync.Mutex
	model     string
	queue     []scriptedResponse
	calls     []driven.CompletionRequest
	RespondFn func(req driven.CompletionRequest) (string, error)
	PingErr   error
}

// NewMockLLMService creates a mock that returns the given responses in order
func NewMockLLMService(responses ...string) *MockLLMService {
	m := &MockLLMService{model: "mock-llm"}
	for _, r := range responses {
		m.QueueResponse(r)
	}
	return m
}

// QueueResponse appends a successful response
func (m *MockLLMService) QueueResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scriptedResponse{text: text})
}

// QueueError appends a failing response
func (m *MockLLMService) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scriptedResponse{err: err})
}

func (m *MockLLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.RespondFn
	var next *scriptedResponse
	if fn == nil && len(m.queue) > 0 {
		next = &m.queue[0]
		m.queue = m.queue[1:]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	if next == nil {
		return "", ErrNoScriptedResponse
	}
	return next.text, next.err
}

func (m *MockLLMService) Model() string {
	return m.model
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockLLMService) Close() error {
	return nil
}

// Calls returns a copy of every request received
func (m *MockLLMService) Calls() []driven.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]driven.CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Complete calls
func (m *MockLLMService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastPrompt returns the content of the final message of the last call
func (m *MockLLMService) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	msgs := m.calls[len(m.calls)-1].Messages
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}
