package services

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

func hours(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     domain.RawEstimate
		wantMin float64
		wantMax float64
	}{
		{"range kept", domain.RawEstimate{Name: "A", MinHours: hours(10), MaxHours: hours(14)}, 10, 14},
		{"range clamped", domain.RawEstimate{Name: "A", MinHours: hours(10), MaxHours: hours(40)}, 10, 15},
		{"reversed range", domain.RawEstimate{Name: "A", MinHours: hours(14), MaxHours: hours(10)}, 10, 14},
		{"equal bounds", domain.RawEstimate{Name: "A", MinHours: hours(8), MaxHours: hours(8)}, 8, 8},
		{"single value", domain.RawEstimate{Name: "A", Hours: hours(20)}, 17, 23},
		{"min only", domain.RawEstimate{Name: "A", MinHours: hours(100)}, 85, 115},
		{"max only", domain.RawEstimate{Name: "A", MaxHours: hours(10)}, 8.5, 11.5},
		{"zero min", domain.RawEstimate{Name: "A", MinHours: hours(0), MaxHours: hours(20)}, 17, 23},
		{"negative min", domain.RawEstimate{Name: "A", MinHours: hours(-5), MaxHours: hours(20)}, 17, 23},
		{"pair wins over single", domain.RawEstimate{Name: "A", Hours: hours(99), MinHours: hours(10), MaxHours: hours(12)}, 10, 12},
		{"no hours simple", domain.RawEstimate{Name: "A", Complexity: "simple"}, 20, 30},
		{"no hours medium", domain.RawEstimate{Name: "A"}, 40, 60},
		{"no hours complex", domain.RawEstimate{Name: "A", Complexity: "high"}, 70, 105},
		{"both zero", domain.RawEstimate{Name: "A", MinHours: hours(0), MaxHours: hours(0), Complexity: "low"}, 20, 30},
		{"negative single", domain.RawEstimate{Name: "A", Hours: hours(-3)}, 40, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]domain.RawEstimate{tt.raw})
			require.Len(t, got, 1)
			assert.InDelta(t, tt.wantMin, got[0].MinHours, 1e-9)
			assert.InDelta(t, tt.wantMax, got[0].MaxHours, 1e-9)
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	got := Normalize([]domain.RawEstimate{{Name: "  ", Category: " ", Description: "  x  ", Hours: hours(10)}})
	require.Len(t, got, 1)
	assert.Equal(t, domain.DefaultFeatureCategory, got[0].Name)
	assert.Equal(t, domain.DefaultFeatureCategory, got[0].Category)
	assert.Equal(t, "x", got[0].Description)
	assert.Equal(t, domain.ComplexityMedium, got[0].Complexity)
}

func TestNormalize_KeepsOrder(t *testing.T) {
	got := Normalize([]domain.RawEstimate{{Name: "B"}, {Name: "A"}, {Name: "C"}})
	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, "A", got[1].Name)
	assert.Equal(t, "C", got[2].Name)
}

func TestNormalize_RangeInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pick := func() *float64 {
		switch rng.Intn(4) {
		case 0:
			return nil
		case 1:
			return hours(-rng.Float64() * 50)
		default:
			return hours(rng.Float64() * 500)
		}
	}
	complexities := []string{"", "simple", "medium", "complex", "unknown"}

	for i := 0; i < 2000; i++ {
		raw := domain.RawEstimate{
			Name:       "f",
			Complexity: complexities[rng.Intn(len(complexities))],
			MinHours:   pick(),
			MaxHours:   pick(),
			Hours:      pick(),
		}
		f := Normalize([]domain.RawEstimate{raw})[0]
		if f.MinHours < 0 || f.MaxHours < f.MinHours || f.MaxHours > f.MinHours*domain.MaxRangeSpread+1e-9 {
			t.Fatalf("range invariant violated for %+v: got %v-%v", raw, f.MinHours, f.MaxHours)
		}
		if math.IsNaN(f.MinHours) || math.IsNaN(f.MaxHours) {
			t.Fatalf("NaN for %+v", raw)
		}
	}
}
