package services

import (
	"strings"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// Normalize converts raw model estimates into bounded feature estimates.
// Every result satisfies 0 <= MinHours <= MaxHours <= MinHours * domain.MaxRangeSpread.
func Normalize(raw []domain.RawEstimate) []domain.FeatureEstimate {
	out := make([]domain.FeatureEstimate, 0, len(raw))
	for _, r := range raw {
		out = append(out, normalizeOne(r))
	}
	return out
}

func normalizeOne(r domain.RawEstimate) domain.FeatureEstimate {
	f := domain.FeatureEstimate{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Complexity:  domain.ParseComplexity(r.Complexity),
		Category:    strings.TrimSpace(r.Category),
	}
	if f.Name == "" {
		f.Name = domain.DefaultFeatureCategory
	}
	if f.Category == "" {
		f.Category = domain.DefaultFeatureCategory
	}

	lo, hi, ok := rawRange(r)
	if !ok {
		def := domain.DefaultComplexityRanges[f.Complexity]
		lo, hi = def.Min, def.Max
	}
	f.MinHours = lo
	f.MaxHours = min(hi, lo*domain.MaxRangeSpread)
	return f
}

// rawRange picks the hour range a model gave, if any usable one exists.
// A pair wins over a single value; a pair with a non-positive minimum is
// treated as a single value.
func rawRange(r domain.RawEstimate) (float64, float64, bool) {
	if r.MinHours != nil && r.MaxHours != nil {
		lo, hi := nonNegative(*r.MinHours), nonNegative(*r.MaxHours)
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo > 0 {
			return lo, hi, true
		}
		return spread(hi)
	}

	for _, v := range []*float64{r.Hours, r.MinHours, r.MaxHours} {
		if v != nil {
			return spread(nonNegative(*v))
		}
	}
	return 0, 0, false
}

// spread synthesizes a range of +/- SingleValueSpread around v
func spread(v float64) (float64, float64, bool) {
	if v <= 0 {
		return 0, 0, false
	}
	return v * (1 - domain.SingleValueSpread), v * (1 + domain.SingleValueSpread), true
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
