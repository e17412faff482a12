package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Complexity is the coarse size class of a feature
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// ParseComplexity maps free text onto a known complexity, defaulting to medium
func ParseComplexity(s string) Complexity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "low", "easy", "small":
		return ComplexitySimple
	case "complex", "high", "hard", "large":
		return ComplexityComplex
	default:
		return ComplexityMedium
	}
}

// HourRange is a min/max pair of hours
type HourRange struct {
	Min float64
	Max float64
}

// DefaultComplexityRanges are used when an estimate carries no hours at all
var DefaultComplexityRanges = map[Complexity]HourRange{
	ComplexitySimple:  {Min: 20, Max: 35},
	ComplexityMedium:  {Min: 40, Max: 65},
	ComplexityComplex: {Min: 70, Max: 120},
}

// ComplexityMultipliers is retained configuration; the breakdown applies only the buffer.
var ComplexityMultipliers = map[Complexity]float64{
	ComplexitySimple:  1.0,
	ComplexityMedium:  1.5,
	ComplexityComplex: 2.5,
}

// MaxRangeSpread bounds every normalized estimate: max <= min * MaxRangeSpread
const MaxRangeSpread = 1.5

// SingleValueSpread is the +/- fraction synthesized around a single hour value
const SingleValueSpread = 0.15

// DefaultFeatureCategory is used when the model gives no category
const DefaultFeatureCategory = "Feature Development"

// RawEstimate is a feature estimate as returned by the model, before normalization.
// Numeric fields are nil when absent.
type RawEstimate struct {
	Name        string
	Description string
	Category    string
	Complexity  string
	MinHours    *float64
	MaxHours    *float64
	Hours       *float64
}

var (
	nameKeys        = []string{"name", "feature", "feature_name", "title"}
	descriptionKeys = []string{"description", "details", "summary"}
	categoryKeys    = []string{"category"}
	complexityKeys  = []string{"complexity_level", "complexity"}
	minKeys         = []string{"base_time_hours_min", "min_hours", "time_hours_min", "hours_min", "min"}
	maxKeys         = []string{"base_time_hours_max", "max_hours", "time_hours_max", "hours_max", "max"}
	hoursKeys       = []string{"hours", "base_time_hours", "time_hours", "estimated_hours"}
)

// UnmarshalJSON accepts the field spellings models commonly produce and
// numbers encoded either as JSON numbers or numeric strings.
func (r *RawEstimate) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	lower := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		lower[strings.ToLower(k)] = v
	}

	r.Name = firstString(lower, nameKeys)
	r.Description = firstString(lower, descriptionKeys)
	r.Category = firstString(lower, categoryKeys)
	r.Complexity = firstString(lower, complexityKeys)
	r.MinHours = firstNumber(lower, minKeys)
	r.MaxHours = firstNumber(lower, maxKeys)
	r.Hours = firstNumber(lower, hoursKeys)
	return nil
}

func firstString(fields map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstNumber(fields map[string]json.RawMessage, keys []string) *float64 {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		if v, ok := ParseHours(raw); ok {
			return &v
		}
	}
	return nil
}

// ParseHours reads a JSON number or a string such as "40", "40h" or "40 hours"
func ParseHours(raw json.RawMessage) (float64, bool) {
	if strings.TrimSpace(string(raw)) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range []string{"hours", "hour", "hrs", "hr", "h"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FeatureEstimate is a normalized estimate for one feature.
// Invariant: 0 <= MinHours <= MaxHours <= MinHours * MaxRangeSpread.
type FeatureEstimate struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	MinHours    float64    `json:"base_time_hours_min"`
	MaxHours    float64    `json:"base_time_hours_max"`
	Complexity  Complexity `json:"complexity_level"`
	Category    string     `json:"category,omitempty"`
}

// BreakdownLine is the buffered time and cost for one feature.
// Values are unrounded; call Rounded at the output boundary.
type BreakdownLine struct {
	Feature    string     `json:"feature"`
	Complexity Complexity `json:"complexity"`
	Category   string     `json:"category"`
	TimeMin    float64    `json:"time_hours_min"`
	TimeMax    float64    `json:"time_hours_max"`
	CostMin    float64    `json:"cost_min"`
	CostMax    float64    `json:"cost_max"`
	TimeHours  float64    `json:"time_hours"`
	Cost       float64    `json:"cost"`
}

// Rounded returns a copy with every numeric field rounded to 2 decimals
func (l BreakdownLine) Rounded() BreakdownLine {
	l.TimeMin = Round2(l.TimeMin)
	l.TimeMax = Round2(l.TimeMax)
	l.CostMin = Round2(l.CostMin)
	l.CostMax = Round2(l.CostMax)
	l.TimeHours = Round2(l.TimeHours)
	l.Cost = Round2(l.Cost)
	return l
}

// Totals sums a breakdown
type Totals struct {
	TimeMin float64 `json:"estimated_time_hours_min"`
	TimeMax float64 `json:"estimated_time_hours_max"`
	CostMin float64 `json:"estimated_cost_min"`
	CostMax float64 `json:"estimated_cost_max"`
}

// Rounded returns a copy with every field rounded to 2 decimals
func (t Totals) Rounded() Totals {
	return Totals{
		TimeMin: Round2(t.TimeMin),
		TimeMax: Round2(t.TimeMax),
		CostMin: Round2(t.CostMin),
		CostMax: Round2(t.CostMax),
	}
}

// MidpointHours returns the average of the min and max time
func (t Totals) MidpointHours() float64 {
	return (t.TimeMin + t.TimeMax) / 2
}

// MidpointCost returns the average of the min and max cost
func (t Totals) MidpointCost() float64 {
	return (t.CostMin + t.CostMax) / 2
}

// EstimateResult is the full output of one estimation run
type EstimateResult struct {
	Features         []FeatureEstimate `json:"features"`
	Breakdown        []BreakdownLine   `json:"breakdown"`
	Totals           Totals            `json:"totals"`
	HourlyRate       float64           `json:"hourly_rate"`
	BufferPercentage float64           `json:"buffer_percentage"`
	Timeline         string            `json:"timeline"`
	Assumptions      []string          `json:"assumptions"`
	Narrative        string            `json:"narrative,omitempty"`
	Stage            string            `json:"extraction_stage"`
}

// Rounded returns a copy ready for output
func (r *EstimateResult) Rounded() *EstimateResult {
	out := *r
	out.Breakdown = make([]BreakdownLine, len(r.Breakdown))
	for i, line := range r.Breakdown {
		out.Breakdown[i] = line.Rounded()
	}
	out.Totals = r.Totals.Rounded()
	return &out
}

// Round2 rounds to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to 1 decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// QueryClass is the outcome of the triviality check
type QueryClass string

const (
	QueryActionable QueryClass = "actionable"
	QueryVague      QueryClass = "vague"
)

// Extraction is the result of running the extractor over one query
type Extraction struct {
	Class    QueryClass
	Features []FeatureEstimate
	Stage    string // name of the cascade stage that produced Features
}

// EstimateRequest is the input to one estimation
type EstimateRequest struct {
	Requirements     string
	FileName         string
	FileContent      []byte
	HourlyRate       float64 // zero means use the configured default
	IncludeNarrative bool
}

// CatalogFeature is one entry of the document-derived feature catalog
type CatalogFeature struct {
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Description     string     `json:"description,omitempty"`
	BaseTimeHours   float64    `json:"base_time_hours"`
	MinHours        float64    `json:"base_time_hours_min"`
	MaxHours        float64    `json:"base_time_hours_max"`
	ComplexityLevel Complexity `json:"complexity_level"`
}
