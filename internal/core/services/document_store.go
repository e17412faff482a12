package services

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// DefaultDocumentFiles is the reference corpus read from the data directory
var DefaultDocumentFiles = []string{
	"Estimation Calculator Data.pdf",
	"content (3).pdf",
	"content (4).pdf",
	"content (5).pdf",
	"content (6).pdf",
	"content (7).pdf",
	"content (8).pdf",
	"Enatega_Product_Overview.docx",
	"Estimates.txt",
}

// DocumentStoreConfig holds configuration for the document store
type DocumentStoreConfig struct {
	// Files are read in order; missing files are skipped
	Files []string

	// PrimaryReference is the id of the authoritative feature/hour document
	PrimaryReference string

	// ExamplesDocument is the id of the example-transcripts document
	ExamplesDocument string

	Logger *slog.Logger
}

// DocumentStore holds the reference documents, read once from a file system.
// After Load returns the store is read-only and safe for concurrent use.
type DocumentStore struct {
	fsys      fs.FS
	extractor driven.ExtractorRegistry
	files     []string
	primaryID string
	examples  string
	logger    *slog.Logger

	once    sync.Once
	loadErr error
	docs    map[string]*domain.Document
	schema  *domain.ReferenceSchema
}

// NewDocumentStore creates a document store reading from fsys
func NewDocumentStore(fsys fs.FS, extractor driven.ExtractorRegistry, cfg DocumentStoreConfig) *DocumentStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	files := cfg.Files
	if len(files) == 0 {
		files = DefaultDocumentFiles
	}
	return &DocumentStore{
		fsys:      fsys,
		extractor: extractor,
		files:     files,
		primaryID: cfg.PrimaryReference,
		examples:  cfg.ExamplesDocument,
		logger:    logger,
		docs:      make(map[string]*domain.Document),
	}
}

// Load reads every configured file exactly once and returns id -> text.
// Later calls return the cached mapping.
func (s *DocumentStore) Load(ctx context.Context) (map[string]string, error) {
	s.once.Do(func() {
		s.loadErr = s.load(ctx)
	})
	if s.loadErr != nil {
		return nil, s.loadErr
	}

	out := make(map[string]string, len(s.docs))
	for id, doc := range s.docs {
		out[id] = doc.Text
	}
	return out, nil
}

func (s *DocumentStore) load(ctx context.Context) error {
	for _, name := range s.files {
		if err := ctx.Err(); err != nil {
			return err
		}

		format, ok := domain.FormatFromFilename(name)
		if !ok {
			s.logger.Warn("skipping reference file with unsupported extension", "file", name)
			continue
		}

		data, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Debug("reference file not found", "file", name)
			} else {
				s.logger.Warn("failed to read reference file", "file", name, "error", err)
			}
			continue
		}

		text, err := s.extractor.Extract(ctx, name, data)
		if err != nil {
			s.logger.Warn("failed to extract reference file", "file", name, "error", err)
			continue
		}

		s.docs[name] = &domain.Document{ID: name, Text: text, Format: format}
		s.logger.Debug("loaded reference file", "file", name, "chars", len(text))
	}

	primary, ok := s.docs[s.primaryID]
	if !ok {
		s.logger.Warn("primary reference not loaded; extraction will rely on semantic context",
			"file", s.primaryID)
		return nil
	}

	schema, err := ParseReferenceSchema(primary.Text)
	if err != nil {
		s.logger.Info("primary reference is not a structured schema; using it as plain text",
			"file", s.primaryID, "reason", err)
		return nil
	}
	s.schema = schema
	s.logger.Info("parsed primary reference schema",
		"categories", len(schema.Categories),
		"features", len(schema.Features()))
	return nil
}

// Get returns a document by id
func (s *DocumentStore) Get(id string) (*domain.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// All returns every loaded document ordered by id
func (s *DocumentStore) All() []*domain.Document {
	out := make([]*domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of loaded documents
func (s *DocumentStore) Len() int {
	return len(s.docs)
}

// PrimaryReference returns the primary reference text, or "" when absent
func (s *DocumentStore) PrimaryReference() string {
	if doc, ok := s.docs[s.primaryID]; ok {
		return doc.Text
	}
	return ""
}

// Schema returns the parsed primary reference, or nil when it is opaque text
func (s *DocumentStore) Schema() *domain.ReferenceSchema {
	return s.schema
}

// Examples returns the example-transcripts text, or "" when absent
func (s *DocumentStore) Examples() string {
	if doc, ok := s.docs[s.examples]; ok {
		return doc.Text
	}
	return ""
}
