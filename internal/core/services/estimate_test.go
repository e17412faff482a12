package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

func TestEstimateService_NoLLM(t *testing.T) {
	p := newTestPipeline(t, nil, false)

	result, err := p.estimates.Estimate(context.Background(), domain.EstimateRequest{
		Requirements: "Build a login screen",
	})
	require.NoError(t, err)

	assert.Equal(t, StageUnavailable, result.Stage)
	require.Len(t, result.Features, 1)
	assert.Equal(t, "Build a login screen", result.Features[0].Name)

	totals := result.Rounded().Totals
	assert.Equal(t, 48.0, totals.TimeMin)
	assert.Equal(t, 72.0, totals.TimeMax)
	assert.Equal(t, 1440.0, totals.CostMin)
	assert.Equal(t, 2160.0, totals.CostMax)
	assert.Equal(t, DefaultHourlyRate, result.HourlyRate)
	assert.Equal(t, 20.0, result.BufferPercentage)
	assert.Equal(t, "Approximately 1.5 weeks", result.Timeline)
	assert.Len(t, result.Assumptions, 7)
	assert.Empty(t, result.Narrative)
}

func TestEstimateService_HourlyRate(t *testing.T) {
	p := newTestPipeline(t, nil, false)

	result, err := p.estimates.Estimate(context.Background(), domain.EstimateRequest{
		Requirements: "Build a login screen",
		HourlyRate:   50,
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.HourlyRate)
	assert.InDelta(t, 2400, result.Totals.CostMin, 1e-9)
	assert.InDelta(t, 3600, result.Totals.CostMax, 1e-9)
}

func TestEstimateService_Narrative(t *testing.T) {
	p := newTestPipeline(t, nil, false)

	result, err := p.estimates.Estimate(context.Background(), domain.EstimateRequest{
		Requirements:     "Build a login screen",
		IncludeNarrative: true,
	})
	require.NoError(t, err)
	assert.Equal(t, FallbackNarrative(result), result.Narrative)
}

func TestEstimateService_Primary(t *testing.T) {
	llm := routedLLM(map[string]string{
		trivialitySystemPrompt: "no",
		extractionSystemPrompt: `[{"name": "Login", "min_hours": 16, "max_hours": 20}, {"name": "Stripe Integration", "min_hours": 24, "max_hours": 30}]`,
	})
	p := newTestPipeline(t, llm, false)

	result, err := p.estimates.Estimate(context.Background(), domain.EstimateRequest{
		Requirements: "Login and Stripe checkout",
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", result.Stage)
	require.Len(t, result.Breakdown, 2)

	totals := result.Rounded().Totals
	assert.Equal(t, 48.0, totals.TimeMin)
	assert.Equal(t, 60.0, totals.TimeMax)
	assert.Equal(t, 1440.0, totals.CostMin)
	assert.Equal(t, 1800.0, totals.CostMax)
}

func TestEstimateService_UploadedFile(t *testing.T) {
	llm := routedLLM(map[string]string{
		trivialitySystemPrompt: "no",
		extractionSystemPrompt: `[{"name": "Reports", "hours": 20}]`,
	})
	p := newTestPipeline(t, llm, false)

	_, err := p.estimates.Estimate(context.Background(), domain.EstimateRequest{
		Requirements: "See attached.",
		FileName:     "Requirements.TXT",
		FileContent:  []byte("  Weekly sales reports for restaurant owners  "),
	})
	require.NoError(t, err)

	prompt := llm.Calls()[1].Messages[0].Content
	assert.Contains(t, prompt, "See attached.\n\nWeekly sales reports for restaurant owners")
}

func TestEstimateService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.EstimateRequest
		reply   string
		wantErr error
	}{
		{
			name:    "missing requirements",
			req:     domain.EstimateRequest{Requirements: "   "},
			wantErr: domain.ErrMissingRequirements,
		},
		{
			name:    "empty file only",
			req:     domain.EstimateRequest{FileName: "empty.txt", FileContent: []byte("  ")},
			wantErr: domain.ErrMissingRequirements,
		},
		{
			name:    "unsupported file",
			req:     domain.EstimateRequest{Requirements: "login", FileName: "budget.xlsx", FileContent: []byte("x")},
			wantErr: domain.ErrUnsupportedFileType,
		},
		{
			name:    "vague",
			req:     domain.EstimateRequest{Requirements: "hi there"},
			reply:   "yes",
			wantErr: domain.ErrVagueRequirements,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := routedLLM(map[string]string{trivialitySystemPrompt: tt.reply})
			p := newTestPipeline(t, llm, false)

			result, err := p.estimates.Estimate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
		})
	}
}

func TestEstimateService_UnsupportedFileMessage(t *testing.T) {
	p := newTestPipeline(t, nil, false)
	_, err := p.estimates.Estimate(context.Background(), domain.EstimateRequest{
		FileName: "Budget.XLSX",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `".xlsx"`)
}

func TestEstimateService_Features(t *testing.T) {
	p := newTestPipeline(t, nil, false)
	features := p.estimates.Features(context.Background())
	require.Len(t, features, 3)
	assert.Equal(t, "Stripe Integration", features[2].Name)
	assert.Equal(t, 27.0, features[2].BaseTimeHours)

	store := newTestStore(t, map[string]string{"overview.txt": testOverview})
	svc := NewEstimateService(nil, NewReconciler(DefaultBufferPercentage), nil, nil, store, EstimateServiceConfig{})
	assert.Empty(t, svc.Features(context.Background()))
}
