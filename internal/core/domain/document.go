package domain

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DocumentFormat identifies how a reference document was read
type DocumentFormat string

const (
	DocumentFormatPDF  DocumentFormat = "pdf"
	DocumentFormatDOCX DocumentFormat = "docx"
	DocumentFormatDOC  DocumentFormat = "doc"
	DocumentFormatText DocumentFormat = "txt"
)

// SupportedFormats lists the file extensions accepted for reference documents and uploads
var SupportedFormats = []DocumentFormat{
	DocumentFormatPDF,
	DocumentFormatDOCX,
	DocumentFormatDOC,
	DocumentFormatText,
}

// FormatFromFilename returns the document format for a filename and whether it is supported
func FormatFromFilename(name string) (DocumentFormat, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, f := range SupportedFormats {
		if string(f) == ext {
			return f, true
		}
	}
	return DocumentFormat(ext), false
}

// Document is a reference file loaded at startup.
// Documents are immutable once loaded.
type Document struct {
	ID     string         `json:"id"` // filename
	Text   string         `json:"-"`
	Format DocumentFormat `json:"format"`
}

// Passage is a chunk of a document held by the context index
type Passage struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Position   int       `json:"position"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
}

// ScoredPassage is a passage ranked against a query
type ScoredPassage struct {
	Passage *Passage `json:"passage"`
	Score   float64  `json:"score"`
}

// Context labels used when assembling extraction context
const (
	ContextLabelPrimary       = "PRIMARY REFERENCE"
	ContextLabelSemantic      = "SEMANTIC MATCH"
	ContextLabelSupplementary = "SUPPLEMENTARY"
)

// ContextPart is one labeled source of context text
type ContextPart struct {
	Label string
	Score float64
	Text  string
}

// ContextBundle is an ordered set of context parts for a single request
type ContextBundle []ContextPart

// Add appends a part unless it is empty or already covered by an accepted part.
// Returns false when the part was dropped.
func (b *ContextBundle) Add(part ContextPart) bool {
	text := strings.TrimSpace(part.Text)
	if text == "" {
		return false
	}
	for _, existing := range *b {
		if strings.Contains(existing.Text, text) {
			return false
		}
	}
	part.Text = text
	*b = append(*b, part)
	return true
}

// Render joins the parts with section headers, never exceeding budget bytes
func (b ContextBundle) Render(budget int) string {
	sections := make([]string, 0, len(b))
	for _, part := range b {
		sections = append(sections, "=== "+part.Label+" ===\n"+part.Text)
	}
	return Truncate(strings.Join(sections, "\n\n"), budget)
}

// Truncate cuts s to at most limit bytes without splitting a UTF-8 sequence
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
