package domain

import (
	"strings"
	"unicode"
)

// ReferenceFeature is one feature entry of the primary reference schema
type ReferenceFeature struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	MinHours float64 `json:"min"`
	MaxHours float64 `json:"max"`
}

// ReferenceCategory groups reference features
type ReferenceCategory struct {
	Name     string             `json:"name"`
	Features []ReferenceFeature `json:"features"`
}

// ReferenceSchema is the typed form of the primary reference document.
// Categories keep the order they appear in the source.
type ReferenceSchema struct {
	Categories []ReferenceCategory `json:"categories"`
	Rules      string              `json:"rules,omitempty"`
}

// Features returns every feature across all categories
func (s *ReferenceSchema) Features() []ReferenceFeature {
	if s == nil {
		return nil
	}
	var out []ReferenceFeature
	for _, c := range s.Categories {
		out = append(out, c.Features...)
	}
	return out
}

// Lookup finds a feature by name, ignoring case, punctuation and spacing
func (s *ReferenceSchema) Lookup(name string) (ReferenceFeature, bool) {
	key := foldName(name)
	if s == nil || key == "" {
		return ReferenceFeature{}, false
	}
	for _, c := range s.Categories {
		for _, f := range c.Features {
			if foldName(f.Name) == key {
				return f, true
			}
		}
	}
	return ReferenceFeature{}, false
}

// Catalog converts the schema into catalog entries
func (s *ReferenceSchema) Catalog() []CatalogFeature {
	features := s.Features()
	out := make([]CatalogFeature, 0, len(features))
	for _, f := range features {
		mid := (f.MinHours + f.MaxHours) / 2
		out = append(out, CatalogFeature{
			Name:            f.Name,
			Category:        f.Category,
			BaseTimeHours:   Round2(mid),
			MinHours:        f.MinHours,
			MaxHours:        f.MaxHours,
			ComplexityLevel: ComplexityForHours(mid),
		})
	}
	return out
}

// ComplexityForHours buckets an hour figure using the default complexity ranges
func ComplexityForHours(hours float64) Complexity {
	switch {
	case hours <= DefaultComplexityRanges[ComplexitySimple].Max:
		return ComplexitySimple
	case hours <= DefaultComplexityRanges[ComplexityMedium].Max:
		return ComplexityMedium
	default:
		return ComplexityComplex
	}
}

func foldName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
