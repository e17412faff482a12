package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

func TestKeywordScorer_Score(t *testing.T) {
	var k KeywordScorer

	tests := []struct {
		name  string
		query string
		text  string
		want  int
	}{
		{"word overlap", "login screen", "The login screen", 2},
		{"short words ignored", "a go login", "a go login", 1},
		{"case insensitive", "LOGIN", "login", 1},
		{"priority term boost", "team login", "team roster and login", 4},
		{"priority term only in query", "developer login", "login", 1},
		{"substring match", "pay", "payments", 1},
		{"no overlap", "payments", "login screen", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.Score(tt.query, tt.text); got != tt.want {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.query, tt.text, got, tt.want)
			}
		})
	}
}

func TestKeywordScorer_Context(t *testing.T) {
	docs := []*domain.Document{
		{ID: "b.txt", Text: "login screen"},
		{ID: "a.txt", Text: "login page"},
		{ID: "c.txt", Text: "payments"},
		{ID: "d.txt", Text: "login screen with team estimate"},
	}

	got := KeywordScorer{}.Context("team login screen", docs, 10000)

	want := "=== From d.txt ===\nlogin screen with team estimate\n\n" +
		"=== From b.txt ===\nlogin screen\n\n" +
		"=== From a.txt ===\nlogin page"
	assert.Equal(t, want, got)
}

func TestKeywordScorer_ContextLimits(t *testing.T) {
	long := strings.Repeat("login ", 1000)
	var docs []*domain.Document
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"} {
		docs = append(docs, &domain.Document{ID: id + ".txt", Text: long})
	}

	t.Run("section cap", func(t *testing.T) {
		got := KeywordScorer{}.Context("login", docs[:1], 100000)
		assert.Equal(t, len("=== From 1.txt ===\n")+keywordSectionLength, len(got))
	})

	t.Run("top documents", func(t *testing.T) {
		got := KeywordScorer{}.Context("login", docs, 1000000)
		assert.Equal(t, keywordMaxDocuments, strings.Count(got, "=== From "))
	})

	t.Run("budget", func(t *testing.T) {
		got := KeywordScorer{}.Context("login", docs, 5000)
		assert.Len(t, got, 5000)
		assert.Equal(t, 2, strings.Count(got, "=== From "))
	})
}

func TestKeywordScorer_NoMatch(t *testing.T) {
	docs := []*domain.Document{{ID: "a.txt", Text: "payments"}}
	assert.Empty(t, KeywordScorer{}.Context("login", docs, 1000))
	assert.Empty(t, KeywordScorer{}.Context("login", nil, 1000))
}
