package extractors

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects text extractors by file extension.
// When several extractors support an extension they are tried highest priority first.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.TextExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with the PDF, DOCX, legacy DOC and text readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPDFExtractor())
	r.Register(NewDOCXExtractor())
	r.Register(NewLegacyDOCExtractor())
	r.Register(NewTextExtractor())
	return r
}

// Register registers an extractor.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, extractor)
}

// Get returns the highest priority extractor for ext, or nil.
func (r *Registry) Get(ext string) driven.TextExtractor {
	matches := r.getAll(ext)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (r *Registry) getAll(ext string) []driven.TextExtractor {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []driven.TextExtractor
	for _, e := range r.extractors {
		for _, supported := range e.SupportedExtensions() {
			if supported == ext {
				matches = append(matches, e)
				break
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})
	return matches
}

// Extract reads filename's bytes with the best matching extractor, falling back
// to lower priority extractors when one fails.
func (r *Registry) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	matches := r.getAll(ext)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, "."+ext)
	}

	var errs []error
	for _, e := range matches {
		text, err := e.Extract(ctx, data)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("extract %s: %w", filename, errors.Join(errs...))
}

// List returns all registered extensions.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]struct{})
	for _, e := range r.extractors {
		for _, ext := range e.SupportedExtensions() {
			set[ext] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for ext := range set {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
