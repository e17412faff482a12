package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// Mock services for testing

type mockEstimateService struct {
	estimateFn func(ctx context.Context, req domain.EstimateRequest) (*domain.EstimateResult, error)
	features   []domain.CatalogFeature
	lastReq    domain.EstimateRequest
}

func (m *mockEstimateService) Estimate(ctx context.Context, req domain.EstimateRequest) (*domain.EstimateResult, error) {
	m.lastReq = req
	if m.estimateFn != nil {
		return m.estimateFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockEstimateService) Features(ctx context.Context) []domain.CatalogFeature {
	return m.features
}

type mockChatService struct {
	chatFn func(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error)
}

func (m *mockChatService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

type mockStatusService struct {
	status *domain.Status
}

func (m *mockStatusService) Status(ctx context.Context) *domain.Status {
	if m.status != nil {
		return m.status
	}
	return &domain.Status{Version: "test"}
}

func newTestServer(est *mockEstimateService, chat *mockChatService) *Server {
	cfg := DefaultConfig()
	cfg.RateLimitRPS = 0
	if est == nil {
		est = &mockEstimateService{}
	}
	if chat == nil {
		chat = &mockChatService{}
	}
	return NewServer(cfg, est, chat, &mockStatusService{})
}

func sampleResult() *domain.EstimateResult {
	line := domain.BreakdownLine{Feature: "Login", TimeMin: 12.004, TimeMax: 18.006, CostMin: 360.12, CostMax: 540.18}
	return &domain.EstimateResult{
		Features:         []domain.FeatureEstimate{{Name: "Login", MinHours: 10, MaxHours: 15, Complexity: domain.ComplexitySimple}},
		Breakdown:        []domain.BreakdownLine{line},
		Totals:           domain.Totals{TimeMin: 12.004, TimeMax: 18.006, CostMin: 360.123, CostMax: 540.178},
		HourlyRate:       30,
		BufferPercentage: 20,
		Timeline:         "Approximately 1.9 working days",
		Narrative:        "<b>Login</b>",
		Stage:            "direct",
	}
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHandleHealth(t *testing.T) {
	status := &mockStatusService{status: &domain.Status{
		Version:        "1.2.3",
		LLMAvailable:   true,
		IndexAvailable: false,
		Documents:      3,
	}}
	s := NewServer(DefaultConfig(), &mockEstimateService{}, &mockChatService{}, status)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", path, rr.Code)
		}
		got := decode[HealthResponse](t, rr)
		assert.Equal(t, HealthResponse{Status: "healthy", Version: "1.2.3", LLMAvailable: true, Documents: 3}, got)
	}
}

func TestHandleEstimate_Success(t *testing.T) {
	est := &mockEstimateService{estimateFn: func(ctx context.Context, req domain.EstimateRequest) (*domain.EstimateResult, error) {
		return sampleResult(), nil
	}}
	s := newTestServer(est, nil)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, formRequest("/estimate", url.Values{
		"requirements": {"Login screen"},
		"hourly_rate":  {"45.5"},
	}))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Login screen", est.lastReq.Requirements)
	assert.Equal(t, 45.5, est.lastReq.HourlyRate)
	assert.False(t, est.lastReq.IncludeNarrative)

	got := decode[map[string]float64](t, rr)
	assert.Equal(t, map[string]float64{
		"estimated_time_hours_min": 12,
		"estimated_time_hours_max": 18.01,
		"estimated_cost_min":       360.12,
		"estimated_cost_max":       540.18,
	}, got)
}

func TestHandleEstimate_File(t *testing.T) {
	est := &mockEstimateService{estimateFn: func(ctx context.Context, req domain.EstimateRequest) (*domain.EstimateResult, error) {
		return sampleResult(), nil
	}}
	s := newTestServer(est, nil)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, multipartRequest(t, "/api/v1/estimate",
		map[string]string{"requirements": "see file"}, "brief.txt", []byte("Admin dashboard")))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "see file", est.lastReq.Requirements)
	assert.Equal(t, "brief.txt", est.lastReq.FileName)
	assert.Equal(t, []byte("Admin dashboard"), est.lastReq.FileContent)
	assert.Zero(t, est.lastReq.HourlyRate)
}

func TestHandleEstimate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		values     url.Values
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing requirements",
			values:     url.Values{},
			err:        domain.ErrMissingRequirements,
			wantStatus: http.StatusBadRequest,
			wantError:  domain.ErrMissingRequirements.Error(),
		},
		{
			name:       "unsupported file",
			values:     url.Values{"requirements": {"x"}},
			err:        fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, ".xlsx"),
			wantStatus: http.StatusBadRequest,
			wantError:  `unsupported file type: ".xlsx"`,
		},
		{
			name:       "invalid rate",
			values:     url.Values{"requirements": {"x"}, "hourly_rate": {"abc"}},
			wantStatus: http.StatusBadRequest,
			wantError:  `invalid hourly rate: "abc"`,
		},
		{
			name:       "negative rate",
			values:     url.Values{"requirements": {"x"}, "hourly_rate": {"-5"}},
			wantStatus: http.StatusBadRequest,
			wantError:  `invalid hourly rate: "-5"`,
		},
		{
			name:       "vague",
			values:     url.Values{"requirements": {"hi"}},
			err:        domain.ErrVagueRequirements,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  domain.ErrVagueRequirements.Error(),
		},
		{
			name:       "unexpected",
			values:     url.Values{"requirements": {"x"}},
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := &mockEstimateService{estimateFn: func(ctx context.Context, req domain.EstimateRequest) (*domain.EstimateResult, error) {
				return nil, tt.err
			}}
			s := newTestServer(est, nil)

			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, formRequest("/estimate", tt.values))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			assert.Equal(t, tt.wantError, decode[ErrorResponse](t, rr).Error)
		})
	}
}

func TestHandleEstimate_TooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitRPS = 0
	cfg.MaxUploadBytes = 1024
	est := &mockEstimateService{}
	s := NewServer(cfg, est, &mockChatService{}, &mockStatusService{})

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, multipartRequest(t, "/estimate", nil, "big.txt", bytes.Repeat([]byte("a"), 8192)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code, rr.Body.String())
}

func TestHandleEstimate_Timeout(t *testing.T) {
	est := &mockEstimateService{
		estimateFn: func(ctx context.Context, req domain.EstimateRequest) (*domain.EstimateResult, error) {
			<-ctx.Done()
			return nil, fmt.Errorf("extract: %w", ctx.Err())
		},
	}
	cfg := DefaultConfig()
	cfg.RateLimitRPS = 0
	cfg.RequestTimeout = 10 * time.Millisecond
	srv := NewServer(cfg, est, &mockChatService{}, &mockStatusService{})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, formRequest("/estimate", url.Values{"requirements": {"Build a login screen"}}))

	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
	assert.Equal(t, "request timed out", decode[ErrorResponse](t, rr).Error)
}

func TestHandleEstimateDetailed(t *testing.T) {
	est := &mockEstimateService{estimateFn: func(ctx context.Context, req domain.EstimateRequest) (*domain.EstimateResult, error) {
		return sampleResult(), nil
	}}
	s := newTestServer(est, nil)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, formRequest("/estimate/detailed", url.Values{"requirements": {"Login"}}))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, est.lastReq.IncludeNarrative)

	got := decode[domain.EstimateResult](t, rr)
	assert.Equal(t, 18.01, got.Totals.TimeMax)
	assert.Equal(t, 12.0, got.Breakdown[0].TimeMin)
	assert.Equal(t, "Approximately 1.9 working days", got.Timeline)
	assert.Equal(t, "<b>Login</b>", got.Narrative)
	assert.Equal(t, "direct", got.Stage)
}

func TestHandleChat(t *testing.T) {
	var got domain.ChatRequest
	chat := &mockChatService{chatFn: func(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
		got = req
		return &domain.ChatResult{
			Response:       "Sure.<br/>",
			Estimate:       &domain.Totals{TimeMin: 48, TimeMax: 72, CostMin: 1440, CostMax: 2160},
			ConversationID: "c-1",
		}, nil
	}}
	s := newTestServer(nil, chat)

	body := `{"message": "login?", "conversation_history": [{"role": "user", "content": "hi"}], "conversation_id": "c-1"}`
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "login?", got.Message)
	require.Len(t, got.ConversationHistory, 1)

	resp := decode[map[string]any](t, rr)
	assert.Equal(t, "Sure.<br/>", resp["response"])
	assert.Equal(t, "c-1", resp["conversation_id"])
	assert.Equal(t, 2160.0, resp["estimate"].(map[string]any)["estimated_cost_max"])
}

func TestHandleChat_Errors(t *testing.T) {
	chat := &mockChatService{chatFn: func(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}}
	s := newTestServer(nil, chat)

	t.Run("invalid body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid request body", decode[ErrorResponse](t, rr).Error)
	})

	t.Run("empty message", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": ""}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleFeatures(t *testing.T) {
	t.Run("catalog", func(t *testing.T) {
		est := &mockEstimateService{features: []domain.CatalogFeature{
			{Name: "Login", Category: "Auth", BaseTimeHours: 12},
			{Name: "Stripe Integration", Category: "Payments", BaseTimeHours: 27},
		}}
		s := newTestServer(est, nil)

		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/features", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		got := decode[FeaturesResponse](t, rr)
		assert.Equal(t, 2, got.TotalCount)
		assert.Equal(t, "Stripe Integration", got.Features[1].Name)
	})

	t.Run("empty", func(t *testing.T) {
		s := newTestServer(nil, nil)

		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/features", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"features": [], "total_count": 0}`, rr.Body.String())
	})
}

func TestHandleSwagger(t *testing.T) {
	s := newTestServer(nil, nil)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	doc := decode[map[string]any](t, rr)
	assert.Equal(t, "Sercha Estimator API", doc["info"].(map[string]any)["title"])
	assert.Contains(t, doc["paths"], "/estimate/detailed")
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	s := newTestServer(nil, nil)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/estimate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
