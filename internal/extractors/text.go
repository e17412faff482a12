package extractors

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TextExtractor = (*TextExtractor)(nil)

// TextExtractor reads plain text files, normalising line endings.
// Invalid UTF-8 is replaced rather than rejected.
type TextExtractor struct{}

// NewTextExtractor creates a text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract returns the file content as text.
func (e *TextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	content := strings.ToValidUTF8(string(data), "\uFFFD")
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return content, nil
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *TextExtractor) SupportedExtensions() []string {
	return []string{"txt"}
}

// Priority returns the selection priority.
func (e *TextExtractor) Priority() int {
	return 50
}
