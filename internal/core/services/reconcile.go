package services

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// DefaultBufferPercentage is the schedule-risk buffer applied to every feature
const DefaultBufferPercentage = 0.20

// Working calendar used for timelines
const (
	hoursPerDay   = 8
	daysPerWeek   = 5
	weeksPerMonth = 4
)

// Reconciler turns normalized features into priced breakdown lines.
// Complexity is assumed to be reflected in each feature's range already,
// so only the buffer is applied.
type Reconciler struct {
	buffer float64
}

// NewReconciler creates a reconciler. A negative buffer falls back to the default.
func NewReconciler(buffer float64) *Reconciler {
	if buffer < 0 {
		buffer = DefaultBufferPercentage
	}
	return &Reconciler{buffer: buffer}
}

// Buffer returns the buffer fraction in use
func (r *Reconciler) Buffer() float64 {
	return r.buffer
}

// BuildBreakdown applies the buffer to each feature and prices it at rate.
// Values stay unrounded.
func (r *Reconciler) BuildBreakdown(features []domain.FeatureEstimate, rate float64) []domain.BreakdownLine {
	factor := 1 + r.buffer
	lines := make([]domain.BreakdownLine, 0, len(features))
	for _, f := range features {
		timeMin := f.MinHours * factor
		timeMax := f.MaxHours * factor
		costMin := timeMin * rate
		costMax := timeMax * rate
		lines = append(lines, domain.BreakdownLine{
			Feature:    f.Name,
			Complexity: f.Complexity,
			Category:   f.Category,
			TimeMin:    timeMin,
			TimeMax:    timeMax,
			CostMin:    costMin,
			CostMax:    costMax,
			TimeHours:  (timeMin + timeMax) / 2,
			Cost:       (costMin + costMax) / 2,
		})
	}
	return lines
}

// Totals sums breakdown lines elementwise
func (r *Reconciler) Totals(lines []domain.BreakdownLine) domain.Totals {
	var t domain.Totals
	for _, l := range lines {
		t.TimeMin += l.TimeMin
		t.TimeMax += l.TimeMax
		t.CostMin += l.CostMin
		t.CostMax += l.CostMax
	}
	return t
}

// Timeline describes a number of hours in working days, weeks or months
func Timeline(hours float64) string {
	days := hours / hoursPerDay
	weeks := days / daysPerWeek

	switch {
	case weeks < 1:
		return fmt.Sprintf("Approximately %s working days", formatAmount(days))
	case weeks < weeksPerMonth:
		return fmt.Sprintf("Approximately %s weeks", formatAmount(weeks))
	default:
		return fmt.Sprintf("Approximately %s months (%s weeks)",
			formatAmount(weeks/weeksPerMonth), formatAmount(weeks))
	}
}

// Assumptions lists the standing assumptions behind every estimate
func (r *Reconciler) Assumptions() []string {
	return []string{
		"Estimates are based on standard implementation practices",
		"Time includes development, testing, and basic documentation",
		fmt.Sprintf("A %s%% buffer has been included for unforeseen complexities", formatAmount(r.buffer*100)),
		"Costs assume the quoted hourly rate",
		"Timeline assumes dedicated development resources",
		"Does not include third-party service costs unless specified",
		"Assumes clear requirements and minimal scope changes",
	}
}

// formatAmount renders v with at most one decimal, dropping a trailing ".0"
func formatAmount(v float64) string {
	return strconv.FormatFloat(domain.Round1(v), 'f', -1, 64)
}
