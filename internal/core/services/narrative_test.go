package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven/mocks"
)

func testResult() *domain.EstimateResult {
	r := NewReconciler(DefaultBufferPercentage)
	features := []domain.FeatureEstimate{
		{Name: "Login", MinHours: 10, MaxHours: 15, Complexity: domain.ComplexitySimple, Category: "Auth"},
	}
	lines := r.BuildBreakdown(features, 30)
	totals := r.Totals(lines)
	return &domain.EstimateResult{
		Features:         features,
		Breakdown:        lines,
		Totals:           totals,
		HourlyRate:       30,
		BufferPercentage: 20,
		Timeline:         Timeline(totals.MidpointHours()),
		Assumptions:      r.Assumptions(),
	}
}

func TestFormatMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bold and lines",
			in:   "**Login**: 12-18 hours\nTotal: $360",
			want: "<b>Login</b>: 12-18 hours<br/>\nTotal: $360<br/>",
		},
		{
			name: "list",
			in:   "Features:\n- Login\n* Signup\nDone",
			want: "Features:<br/>\n<ul>\n<li>Login</li>\n<li>Signup</li>\n</ul>\nDone<br/>",
		},
		{
			name: "list at end",
			in:   "- **A**\n- B",
			want: "<ul>\n<li><b>A</b></li>\n<li>B</li>\n</ul>",
		},
		{
			name: "blank lines dropped",
			in:   "one\n\n\ntwo",
			want: "one<br/>\ntwo<br/>",
		},
		{
			name: "next steps dropped",
			in:   "Summary line\n- item\n**Next Steps**:\n- call us",
			want: "Summary line<br/>\n<ul>\n<li>item</li>\n</ul>",
		},
		{
			name: "empty",
			in:   "  ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMarkup(tt.in); got != tt.want {
				t.Errorf("FormatMarkup(%q) =\n%q\nwant\n%q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFallbackNarrative(t *testing.T) {
	got := FallbackNarrative(testResult())

	assert.True(t, strings.HasPrefix(got, "Based on your requirements:<br/><br/>"))
	assert.Contains(t, got, "<b>Login</b>: 12.00-18.00 hours, $360.00-$540.00<br/>")
	assert.Contains(t, got, "<b>Total</b>: 12.00-18.00 hours, $360.00-$540.00<br/>")
	assert.Contains(t, got, "<b>Timeline</b>: Approximately 1.9 working days")
	assert.Equal(t, fallbackAssumptions, strings.Count(got, "<li>"))
	assert.True(t, strings.HasSuffix(got, "</ul>"))
	assert.NotContains(t, got, "**")
}

func TestFallbackNarrative_ModelSuppliedNames(t *testing.T) {
	r := NewReconciler(DefaultBufferPercentage)
	features := Normalize([]domain.RawEstimate{{Name: "**Login** screen"}, {Name: "Reports **beta"}})
	lines := r.BuildBreakdown(features, 30)
	totals := r.Totals(lines)

	got := FallbackNarrative(&domain.EstimateResult{
		Features:  features,
		Breakdown: lines,
		Totals:    totals,
		Timeline:  Timeline(totals.MidpointHours()),
	})
	assert.NotContains(t, got, "**")
	assert.Contains(t, got, "<b><b>Login</b> screen</b>:")
	assert.Contains(t, got, "<b>Reports beta</b>:")
}

func TestNarrativeGenerator_Render(t *testing.T) {
	ctx := context.Background()

	t.Run("no llm", func(t *testing.T) {
		p := newTestPipeline(t, nil, false)
		result := testResult()
		assert.Equal(t, FallbackNarrative(result), p.narrative.Render(ctx, "login", result))
	})

	t.Run("model reply", func(t *testing.T) {
		llm := mocks.NewMockLLMService("**Login** will take 12-18 hours.\nNext steps: sign the contract")
		p := newTestPipeline(t, llm, false)

		got := p.narrative.Render(ctx, "login screen", testResult())
		assert.Equal(t, "<b>Login</b> will take 12-18 hours.<br/>", got)

		req := llm.Calls()[0]
		assert.Equal(t, narrativeTemperature, req.Temperature)
		assert.Equal(t, narrativeMaxTokens, req.MaxTokens)
		assert.True(t, strings.HasPrefix(req.System, "You are an estimation consultant."))
		assert.Contains(t, req.System, testExamples)

		prompt := llm.LastPrompt()
		assert.Contains(t, prompt, "Client requirements: login screen")
		assert.Contains(t, prompt, "- Login: 12.00-18.00 hours, $360.00-$540.00")
		assert.Contains(t, prompt, "Total cost: $360.00-$540.00")
	})

	t.Run("model error", func(t *testing.T) {
		llm := mocks.NewMockLLMService()
		llm.QueueError(errors.New("rate limited"))
		p := newTestPipeline(t, llm, false)

		result := testResult()
		assert.Equal(t, FallbackNarrative(result), p.narrative.Render(ctx, "login", result))
	})

	t.Run("only next steps", func(t *testing.T) {
		llm := mocks.NewMockLLMService("Next steps: call us")
		p := newTestPipeline(t, llm, false)

		result := testResult()
		got := p.narrative.Render(ctx, "login", result)
		require.NotEmpty(t, got)
		assert.Equal(t, FallbackNarrative(result), got)
	})
}
