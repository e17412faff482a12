package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-estimator/internal/runtime"
)

// Narrative generation settings
const (
	narrativeTemperature   = 0.2
	narrativeMaxTokens     = 600
	narrativeContextBudget = 3000
	fallbackAssumptions    = 4
)

var markdownBold = regexp.MustCompile(`\*\*(.+?)\*\*`)

// NarrativeGenerator writes a short client-facing summary of an estimate
type NarrativeGenerator struct {
	services   *runtime.Services
	aggregator *ContextAggregator
	docs       *DocumentStore
	logger     *slog.Logger
}

// NewNarrativeGenerator creates a narrative generator
func NewNarrativeGenerator(services *runtime.Services, aggregator *ContextAggregator, docs *DocumentStore, logger *slog.Logger) *NarrativeGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &NarrativeGenerator{services: services, aggregator: aggregator, docs: docs, logger: logger}
}

// Render returns the narrative for result. It falls back to a fixed template
// when no LLM is configured, the call fails or the reply is empty.
func (g *NarrativeGenerator) Render(ctx context.Context, requirements string, result *domain.EstimateResult) string {
	llm := g.services.LLMService()
	if llm == nil {
		return FallbackNarrative(result)
	}

	refs := g.aggregator.Context(ctx, requirements, narrativeContextBudget)
	req := driven.Prompt(
		narrativeSystemPrompt(g.docs.Examples()),
		narrativePrompt(requirements, result, refs),
		narrativeTemperature,
		narrativeMaxTokens,
	)
	reply, err := llm.Complete(ctx, req)
	if err != nil {
		g.logger.Warn("narrative generation failed, using template", "error", err)
		return FallbackNarrative(result)
	}

	text := FormatMarkup(reply)
	if text == "" {
		return FallbackNarrative(result)
	}
	return text
}

// FormatMarkup converts model output to the reply markup: markdown bold becomes
// <b>, "- " and "* " lines become list items, other lines end in <br/>.
// Everything from the first line mentioning next steps is dropped.
func FormatMarkup(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), "next steps") {
			lines = lines[:i]
			break
		}
	}

	var (
		out    []string
		inList bool
	)
	for _, line := range lines {
		line = strings.TrimSpace(markdownBold.ReplaceAllString(line, "<b>$1</b>"))
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+strings.TrimSpace(line[2:])+"</li>")
			continue
		}
		if inList {
			out = append(out, "</ul>")
			inList = false
		}
		if line != "" {
			out = append(out, line+"<br/>")
		}
	}
	if inList {
		out = append(out, "</ul>")
	}
	return strings.Join(out, "\n")
}

// FallbackNarrative renders result with a fixed template
func FallbackNarrative(result *domain.EstimateResult) string {
	totals := result.Totals.Rounded()

	var b strings.Builder
	b.WriteString("Based on your requirements:<br/><br/>\n")
	for _, line := range result.Breakdown {
		l := line.Rounded()
		fmt.Fprintf(&b, "<b>%s</b>: %.2f-%.2f hours, $%.2f-$%.2f<br/>\n",
			inlineMarkup(l.Feature), l.TimeMin, l.TimeMax, l.CostMin, l.CostMax)
	}
	fmt.Fprintf(&b, "<br/>\n<b>Total</b>: %.2f-%.2f hours, $%.2f-$%.2f<br/>\n",
		totals.TimeMin, totals.TimeMax, totals.CostMin, totals.CostMax)
	fmt.Fprintf(&b, "<b>Timeline</b>: %s<br/><br/>\n", result.Timeline)

	if assumptions := firstN(result.Assumptions, fallbackAssumptions); len(assumptions) > 0 {
		b.WriteString("<b>Assumptions</b>:\n<ul>\n")
		for _, a := range assumptions {
			fmt.Fprintf(&b, "<li>%s</li>\n", inlineMarkup(a))
		}
		b.WriteString("</ul>")
	}
	return strings.TrimSpace(b.String())
}

// inlineMarkup converts bold markers in model-supplied text and drops any
// unpaired ones
func inlineMarkup(s string) string {
	return strings.ReplaceAll(markdownBold.ReplaceAllString(s, "<b>$1</b>"), "**", "")
}
