package driven

import (
	"context"
)

// TextExtractor turns a document file into plain text
type TextExtractor interface {
	// Extract reads the document bytes and returns its text
	Extract(ctx context.Context, data []byte) (string, error)

	// SupportedExtensions returns lower-case extensions without the dot, e.g. "pdf"
	SupportedExtensions() []string

	// Priority returns the extractor priority (higher = more specific).
	// Format-specific readers use 50-89, fallbacks 1-9.
	Priority() int
}

// ExtractorRegistry selects a text extractor by file name
type ExtractorRegistry interface {
	// Extract reads a named file using the best extractor for its extension
	Extract(ctx context.Context, filename string, data []byte) (string, error)

	// Get returns the highest priority extractor for an extension, or nil
	Get(ext string) TextExtractor

	// Register registers an extractor
	Register(extractor TextExtractor)

	// List returns all registered extensions
	List() []string
}

// PostProcessor applies post-processing to passage chunks.
// Processors form a pipeline: Chunker -> WhitespaceNormalizer -> Deduplicator.
type PostProcessor interface {
	// Process transforms chunks. The first processor receives one chunk holding the full text.
	Process(chunks []Chunk) []Chunk

	// Name returns the processor name for logging
	Name() string

	// Order returns the processor order in the pipeline (lower = earlier)
	Order() int
}

// Chunk is a piece of document text moving through the post-processing pipeline
type Chunk struct {
	Content     string
	Position    int
	StartOffset int
	EndOffset   int
}

// PostProcessorPipeline chains post-processors in order
type PostProcessorPipeline interface {
	// Process splits raw document text into passage chunks
	Process(content string) []Chunk

	// Add adds a processor; processors run sorted by Order()
	Add(processor PostProcessor)

	// List returns processor names in order
	List() []string
}
