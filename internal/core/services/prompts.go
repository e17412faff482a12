package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// Fixed chat replies
const (
	ChatNotConfiguredReply = "OpenAI API is not configured. Please set OPENAI_API_KEY environment variable."
	ChatGreetingReply      = "Hello! I'm your Estimation Bot. I specialize in providing time and cost estimates for software projects. What would you like to estimate today?"
	ChatRedirectReply      = "I specialize in providing time and cost estimates for software projects. Could you tell me about the features you'd like to estimate?"
)

const featureJSONShape = `[{"name": "Feature Name", "description": "What will be built", "base_time_hours_min": 0, "base_time_hours_max": 0, "complexity_level": "simple|medium|complex", "category": "Category"}]`

const trivialitySystemPrompt = "You screen incoming software estimation requests. Answer with a single word: yes or no."

func trivialityPrompt(query string) string {
	return fmt.Sprintf(`Is the following message too vague to estimate? Answer yes if it is a greeting, small talk, an off-topic question, or only refers to an attached file without describing any feature. Answer no if it describes anything that could be built.

Message:
%s`, query)
}

const extractionSystemPrompt = `You are a senior software estimation analyst.
Break requirements into concrete features and estimate development hours for each.
The PRIMARY REFERENCE section holds the team's own feature estimates. When a feature appears there, its hours take precedence over your own knowledge.
Use the other sections for team size, stack and scope.
Prefer the optimistic end of any range you derive.
Return only a JSON array with no explanations.`

func extractionPrompt(query, context string) string {
	var b strings.Builder
	b.WriteString("Requirements:\n")
	b.WriteString(query)
	b.WriteString("\n\n")
	if context != "" {
		b.WriteString("Reference context:\n")
		b.WriteString(context)
		b.WriteString("\n\n")
	}
	b.WriteString(`Instructions:
1. List every feature the requirements ask for.
2. Look each one up in the PRIMARY REFERENCE. Use its hours when found; otherwise reason from the closest similar feature.
3. Give a narrow hour range per feature.

Return a complete JSON array in this shape:
`)
	b.WriteString(featureJSONShape)
	return b.String()
}

const strictJSONSystemPrompt = "You output JSON only. Your entire reply must be one valid, complete JSON array with every bracket closed."

func strictExtractionPrompt(query, context string) string {
	return fmt.Sprintf(`Estimate development hours for these requirements.

Requirements:
%s

Context:
%s

Reply with ONLY a JSON array of this shape and nothing else:
%s`, query, orPlaceholder(domain.Truncate(context, 4000), "No context available, use your own knowledge."), featureJSONShape)
}

const referenceLookupSystemPrompt = "You match requirements against a list of known features. Return only valid JSON."

func referenceLookupPrompt(query, reference string) string {
	return fmt.Sprintf(`Find the feature in the reference list that best matches the request.

Request:
%s

Reference list:
%s

Return JSON of the form {"name": "<feature name exactly as written in the list>", "hours": <number>}.
Return only the JSON object.`, query, domain.Truncate(reference, 3000))
}

const generalKnowledgeSystemPrompt = "You are an experienced software estimator. Return only valid JSON."

func generalKnowledgePrompt(query string) string {
	return fmt.Sprintf(`Estimate this request as a single feature using general industry knowledge.

Request:
%s

Return one JSON object:
{"name": "Feature Name", "description": "What will be built", "min_hours": <number>, "max_hours": <number>, "complexity": "simple|medium|complex"}`, query)
}

// narrativeSystemPrompt sets the tone and markup rules shared by narratives and chat
func narrativeSystemPrompt(examples string) string {
	var b strings.Builder
	b.WriteString(`You are an estimation consultant. You only provide time and cost estimates.

Rules:
- Base every number strictly on the data you are given.
- Be concise: at most 120 words.
- Format with HTML only: <b>bold</b>, <br/> for line breaks, <ul><li> for lists. Never use markdown asterisks.
- Do not include a "Next Steps" section.
- If asked about anything other than estimates, reply: "I specialize in providing time and cost estimates. How can I help with your project requirements?"`)
	if examples = strings.TrimSpace(examples); examples != "" {
		b.WriteString("\n\nExample conversations showing the expected format:\n")
		b.WriteString(domain.Truncate(examples, 2000))
	}
	return b.String()
}

func narrativePrompt(requirements string, result *domain.EstimateResult, context string) string {
	totals := result.Totals.Rounded()

	var b strings.Builder
	fmt.Fprintf(&b, "Client requirements: %s\n\n", requirements)
	if context != "" {
		fmt.Fprintf(&b, "Relevant reference material:\n%s\n\n", domain.Truncate(context, 2500))
	}
	b.WriteString("Estimate breakdown (use these exact values):\n")
	names := make([]string, 0, len(result.Breakdown))
	for _, line := range result.Breakdown {
		l := line.Rounded()
		fmt.Fprintf(&b, "- %s: %.2f-%.2f hours, $%.2f-$%.2f\n", l.Feature, l.TimeMin, l.TimeMax, l.CostMin, l.CostMax)
		names = append(names, l.Feature)
	}
	fmt.Fprintf(&b, "\nTotal time: %.2f-%.2f hours\n", totals.TimeMin, totals.TimeMax)
	fmt.Fprintf(&b, "Total cost: $%.2f-$%.2f\n", totals.CostMin, totals.CostMax)
	fmt.Fprintf(&b, "Timeline: %s\n\nAssumptions:\n", result.Timeline)
	for _, a := range firstN(result.Assumptions, 5) {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	fmt.Fprintf(&b, `
Write a brief summary of at most 120 words in HTML.
It must state the totals exactly as given and mention these features: %s.`, strings.Join(firstN(names, 3), ", "))
	return b.String()
}

func chatSystemPrompt(examples, context string) string {
	prompt := narrativeSystemPrompt(examples)
	if context != "" {
		prompt += "\n\nRelevant context for this query:\n" + domain.Truncate(context, 1500)
	}
	return prompt + "\n\nRemember: you only provide estimates. Redirect anything else back to estimation."
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
