package postprocessors

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline splits reference document text into passages for the context index.
// Processors run sorted by Order(), starting with a Chunker.
type Pipeline struct {
	mu         sync.Mutex
	processors []driven.PostProcessor
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Add adds a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	sort.SliceStable(p.processors, func(i, j int) bool {
		return p.processors[i].Order() < p.processors[j].Order()
	})
}

// Process runs content through every processor.
func (p *Pipeline) Process(content string) []driven.Chunk {
	p.mu.Lock()
	processors := make([]driven.PostProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.Unlock()

	chunks := []driven.Chunk{{
		Content:   content,
		EndOffset: len(content),
	}}
	for _, proc := range processors {
		chunks = proc.Process(chunks)
	}
	return chunks
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// PassagePipeline returns the pipeline used to build index passages:
// chunk, normalise whitespace, drop repeated passages.
func PassagePipeline(cfg ChunkConfig) *Pipeline {
	p := NewPipeline()
	p.Add(NewChunker(cfg))
	p.Add(NewWhitespaceNormalizer())
	p.Add(NewDeduplicator(DefaultDeduplicatorConfig()))
	return p
}

// ChunkConfig configures the chunker behavior.
type ChunkConfig struct {
	// MaxChunkSize is the maximum bytes per passage
	MaxChunkSize int

	// Overlap is the byte overlap between consecutive passages
	Overlap int

	// PreserveSentences tries to break at sentence boundaries
	PreserveSentences bool

	// PreserveParagraphs tries to break at paragraph boundaries
	PreserveParagraphs bool
}

// DefaultChunkConfig returns the passage sizing used by the context index.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize:       1500,
		Overlap:            200,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// breakWindow is how far back from the size limit a natural break is searched for
const breakWindow = 200

// Chunker splits content into overlapping passages no longer than MaxChunkSize.
type Chunker struct {
	config ChunkConfig
}

// Verify interface compliance
var _ driven.PostProcessor = (*Chunker)(nil)

// NewChunker creates a new chunker with the given config.
func NewChunker(config ChunkConfig) *Chunker {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultChunkConfig().MaxChunkSize
	}
	if config.Overlap < 0 || config.Overlap >= config.MaxChunkSize {
		config.Overlap = 0
	}
	return &Chunker{config: config}
}

// Process splits every chunk into passages.
func (c *Chunker) Process(chunks []driven.Chunk) []driven.Chunk {
	var result []driven.Chunk
	position := 0
	for _, chunk := range chunks {
		for _, piece := range c.split(chunk.Content, chunk.StartOffset) {
			piece.Position = position
			position++
			result = append(result, piece)
		}
	}
	return result
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Order returns 0 - chunker runs first.
func (c *Chunker) Order() int {
	return 0
}

func (c *Chunker) split(content string, base int) []driven.Chunk {
	size := c.config.MaxChunkSize
	if len(content) <= size {
		return []driven.Chunk{{Content: content, StartOffset: base, EndOffset: base + len(content)}}
	}

	var out []driven.Chunk
	start := 0
	for start < len(content) {
		end := start + size
		if end >= len(content) {
			end = len(content)
		} else {
			end = runeBoundary(content, end)
			if bp := c.breakPoint(content, start, end); bp > start {
				end = bp
			}
		}
		if end <= start {
			// a single rune wider than the remaining window
			_, w := utf8.DecodeRuneInString(content[start:])
			end = start + w
		}

		out = append(out, driven.Chunk{
			Content:     content[start:end],
			StartOffset: base + start,
			EndOffset:   base + end,
		})
		if end >= len(content) {
			break
		}

		next := runeBoundary(content, end-c.config.Overlap)
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

// breakPoint finds the last paragraph, sentence or word break in the window before end.
func (c *Chunker) breakPoint(content string, start, end int) int {
	from := end - breakWindow
	if from < start {
		from = start
	}
	window := content[from:end]

	if c.config.PreserveParagraphs {
		if i := strings.LastIndex(window, "\n\n"); i > 0 {
			return from + i + 2
		}
	}
	if c.config.PreserveSentences {
		best := -1
		for _, ender := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
			if i := strings.LastIndex(window, ender); i != -1 && i+len(ender) > best {
				best = i + len(ender)
			}
		}
		if best > 0 {
			return from + best
		}
	}
	if i := strings.LastIndexAny(window, " \n\t"); i > 0 {
		return from + i + 1
	}
	return end
}

// runeBoundary moves i back to the start of the rune containing it.
func runeBoundary(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// DeduplicatorConfig configures the deduplicator.
type DeduplicatorConfig struct {
	// MinDuplicateLength is the minimum passage length checked for duplicates
	MinDuplicateLength int
}

// DefaultDeduplicatorConfig returns sensible defaults.
func DefaultDeduplicatorConfig() DeduplicatorConfig {
	return DeduplicatorConfig{MinDuplicateLength: 50}
}

// Deduplicator drops passages whose normalised text was already seen.
// PDF exports often repeat headers and footers on every page.
type Deduplicator struct {
	config DeduplicatorConfig
}

// Verify interface compliance
var _ driven.PostProcessor = (*Deduplicator)(nil)

// NewDeduplicator creates a new deduplicator with the given config.
func NewDeduplicator(config DeduplicatorConfig) *Deduplicator {
	return &Deduplicator{config: config}
}

// Process removes duplicate passages, keeping the first occurrence.
func (d *Deduplicator) Process(chunks []driven.Chunk) []driven.Chunk {
	seen := make(map[string]struct{}, len(chunks))
	result := make([]driven.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Content) >= d.config.MinDuplicateLength {
			key := strings.ToLower(strings.Join(strings.Fields(chunk.Content), " "))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		result = append(result, chunk)
	}
	return result
}

// Name returns the processor name.
func (d *Deduplicator) Name() string {
	return "deduplicator"
}

// Order returns 10 - deduplicator runs last.
func (d *Deduplicator) Order() int {
	return 10
}

// WhitespaceNormalizer tidies extracted text: unix line endings, single spaces,
// at most one blank line in a row. Passages left empty are dropped.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a new whitespace normalizer.
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Process normalizes whitespace in chunks.
func (w *WhitespaceNormalizer) Process(chunks []driven.Chunk) []driven.Chunk {
	result := make([]driven.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if content := NormalizeWhitespace(chunk.Content); content != "" {
			chunk.Content = content
			result = append(result, chunk)
		}
	}
	return result
}

// Name returns the processor name.
func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

// Order returns 5 - runs between chunker and deduplicator.
func (w *WhitespaceNormalizer) Order() int {
	return 5
}

// NormalizeWhitespace applies the whitespace rules to a single string.
func NormalizeWhitespace(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
