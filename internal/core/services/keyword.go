package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// Keyword scoring limits
const (
	keywordMaxDocuments  = 8
	keywordSectionLength = 3000
	keywordPriorityBoost = 2
)

// keywordPriorityTerms add a boost when present in both query and document
var keywordPriorityTerms = []string{"team", "developer", "estimate"}

// KeywordScorer ranks whole documents by query word overlap.
// It is used when the context index is unavailable.
type KeywordScorer struct{}

type keywordHit struct {
	doc   *domain.Document
	score int
}

// Score returns the overlap score of a document against a query
func (KeywordScorer) Score(query, text string) int {
	queryLower := strings.ToLower(query)
	textLower := strings.ToLower(text)

	score := 0
	for _, word := range strings.Fields(queryLower) {
		if len(word) > 2 && strings.Contains(textLower, word) {
			score++
		}
	}
	for _, term := range keywordPriorityTerms {
		if strings.Contains(queryLower, term) && strings.Contains(textLower, term) {
			score += keywordPriorityBoost
		}
	}
	return score
}

// Context renders the best matching documents as "=== From <id> ===" sections,
// never exceeding budget bytes. Returns "" when nothing matches.
func (k KeywordScorer) Context(query string, docs []*domain.Document, budget int) string {
	hits := make([]keywordHit, 0, len(docs))
	for _, doc := range docs {
		if score := k.Score(query, doc.Text); score > 0 {
			hits = append(hits, keywordHit{doc: doc, score: score})
		}
	}
	if len(hits) == 0 {
		return ""
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.ID < hits[j].doc.ID
	})
	if len(hits) > keywordMaxDocuments {
		hits = hits[:keywordMaxDocuments]
	}

	var b strings.Builder
	for _, hit := range hits {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("=== From " + hit.doc.ID + " ===\n")
		b.WriteString(domain.Truncate(hit.doc.Text, keywordSectionLength))
		if b.Len() > budget {
			break
		}
	}
	return domain.Truncate(b.String(), budget)
}
