package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeatures(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantNames []string
		wantStage string
	}{
		{
			name:      "array",
			text:      `[{"name": "Login", "base_time_hours_min": 16, "base_time_hours_max": 20}, {"name": "Signup", "hours": 8}]`,
			wantNames: []string{"Login", "Signup"},
			wantStage: "direct",
		},
		{
			name:      "fenced",
			text:      "```json\n[{\"name\": \"Login\", \"hours\": 10}]\n```",
			wantNames: []string{"Login"},
			wantStage: "direct",
		},
		{
			name:      "features key",
			text:      `{"summary": "two features", "features": [{"name": "A", "hours": 1}, {"name": "B", "hours": 2}]}`,
			wantNames: []string{"A", "B"},
			wantStage: "direct",
		},
		{
			name:      "first array-valued key",
			text:      `{"notes": {"x": 1}, "count": 2, "items": [{"name": "C", "hours": 3}], "more": [{"name": "D"}]}`,
			wantNames: []string{"C"},
			wantStage: "direct",
		},
		{
			name:      "array inside prose",
			text:      "Here is the breakdown:\n[{\"name\": \"Checkout\", \"min_hours\": 30, \"max_hours\": 36}]\nLet me know!",
			wantNames: []string{"Checkout"},
			wantStage: "array-span",
		},
		{
			name:      "truncated array",
			text:      `[{"name": "A", "hours": 10}, {"name": "B", "hours": 20}, {"name": "C", "ho`,
			wantNames: []string{"A", "B"},
			wantStage: "objects",
		},
		{
			name:      "truncated features object",
			text:      `{"features": [{"name": "A", "hours": 10}, {"name": "B"`,
			wantNames: []string{"A"},
			wantStage: "objects",
		},
		{
			name:      "braces inside strings",
			text:      `[{"name": "Template {x}", "description": "uses } and {", "hours": 5}, {"name": "cut`,
			wantNames: []string{"Template {x}"},
			wantStage: "objects",
		},
		{
			name:      "single object",
			text:      `{"name": "Reports", "hours": 12}`,
			wantNames: []string{"Reports"},
			wantStage: "objects",
		},
		{
			name:      "trailing comma",
			text:      `[{"name": "A", "hours": 10},]`,
			wantNames: []string{"A"},
			wantStage: "objects",
		},
		{
			name: "prose",
			text: "I cannot estimate this without more detail.",
		},
		{
			name: "array of strings",
			text: `["Login", "Signup"]`,
		},
		{
			name: "empty array",
			text: `[]`,
		},
		{
			name: "empty",
			text: "  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stage := ParseFeatures(tt.text)
			if stage != tt.wantStage {
				t.Errorf("stage = %q, want %q", stage, tt.wantStage)
			}
			names := make([]string, 0, len(got))
			for _, r := range got {
				names = append(names, r.Name)
			}
			if len(tt.wantNames) == 0 {
				assert.Empty(t, names)
				return
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestParseFeatures_Fields(t *testing.T) {
	got, _ := ParseFeatures(`[{"feature": "Login", "details": "email + password", "complexity": "HIGH",
		"min": "16h", "max": "20 hours", "category": "Auth"}]`)
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, "Login", r.Name)
	assert.Equal(t, "email + password", r.Description)
	assert.Equal(t, "HIGH", r.Complexity)
	assert.Equal(t, "Auth", r.Category)
	require.NotNil(t, r.MinHours)
	require.NotNil(t, r.MaxHours)
	assert.Equal(t, 16.0, *r.MinHours)
	assert.Equal(t, 20.0, *r.MaxHours)
	assert.Nil(t, r.Hours)
}
