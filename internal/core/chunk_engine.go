// ABOUTME: ChunkEngine splits Documents into overlapping, size-bounded chunks
// ABOUTME: Prefers paragraph, then line, then word boundaries before a hard character cut
package core

import (
	"strings"
	"unicode/utf8"

	"github.com/harper/guia/internal/models"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of characters shared by consecutive chunks
	DefaultChunkOverlap = 200
)

// DefaultSeparators are tried in order; "" means a hard character cut
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// ChunkEngine handles recursive boundary-aware text chunking
type ChunkEngine struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// ChunkOption configures a ChunkEngine
type ChunkOption func(*ChunkEngine)

// WithSeparators overrides the separator hierarchy
func WithSeparators(seps ...string) ChunkOption {
	return func(ce *ChunkEngine) {
		if len(seps) > 0 {
			ce.separators = seps
		}
	}
}

// NewChunkEngine creates a ChunkEngine. Sizes are measured in characters (runes).
// The overlap must be smaller than the chunk size, otherwise chunks would stop advancing.
func NewChunkEngine(chunkSize, chunkOverlap int, opts ...ChunkOption) (*ChunkEngine, error) {
	if chunkSize <= 0 {
		return nil, models.NewConfigError("chunk_size", "must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, models.NewConfigError("chunk_overlap", "cannot be negative, got %d", chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, models.NewConfigError("chunk_overlap",
			"must be less than chunk_size (%d), got %d", chunkSize, chunkOverlap)
	}

	ce := &ChunkEngine{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   DefaultSeparators,
	}
	for _, opt := range opts {
		opt(ce)
	}
	return ce, nil
}

// ChunkSize returns the configured maximum chunk length
func (ce *ChunkEngine) ChunkSize() int { return ce.chunkSize }

// ChunkOverlap returns the configured overlap length
func (ce *ChunkEngine) ChunkOverlap() int { return ce.chunkOverlap }

// SplitDocuments chunks every document, preserving order within and across documents
func (ce *ChunkEngine) SplitDocuments(docs []models.Document) []models.Chunk {
	var chunks []models.Chunk
	for _, doc := range docs {
		for i, text := range ce.Split(doc.Content) {
			chunks = append(chunks, models.Chunk{
				ID:       models.ChunkID(doc.Source, doc.Page, i),
				Content:  text,
				Source:   doc.Source,
				Page:     doc.Page,
				Position: i,
				Order:    len(chunks),
			})
		}
	}
	return chunks
}

// Split breaks text into chunks of at most chunkSize characters
func (ce *ChunkEngine) Split(text string) []string {
	return ce.splitText(text, ce.separators)
}

func (ce *ChunkEngine) splitText(text string, separators []string) []string {
	// Pick the first separator present in the text; finer ones are kept for recursion
	separator := separators[len(separators)-1]
	var finer []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var final, pending []string
	for _, piece := range splitOn(text, separator) {
		if runeLen(piece) < ce.chunkSize {
			pending = append(pending, piece)
			continue
		}

		if len(pending) > 0 {
			final = append(final, ce.merge(pending, separator)...)
			pending = nil
		}
		if len(finer) == 0 {
			if strings.TrimSpace(piece) != "" {
				final = append(final, strings.TrimSpace(piece))
			}
		} else {
			final = append(final, ce.splitText(piece, finer)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, ce.merge(pending, separator)...)
	}
	return final
}

// merge greedily packs pieces into chunks, carrying at most chunkOverlap
// characters of trailing pieces into the next chunk
func (ce *ChunkEngine) merge(pieces []string, separator string) []string {
	sepLen := runeLen(separator)
	sepIf := func(cond bool) int {
		if cond {
			return sepLen
		}
		return 0
	}

	var chunks, current []string
	total := 0
	for _, piece := range pieces {
		n := runeLen(piece)

		if total+n+sepIf(len(current) > 0) > ce.chunkSize && len(current) > 0 {
			if chunk := joinChunk(current, separator); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for len(current) > 0 &&
				(total > ce.chunkOverlap || (total+n+sepIf(len(current) > 0) > ce.chunkSize && total > 0)) {
				total -= runeLen(current[0]) + sepIf(len(current) > 1)
				current = current[1:]
			}
		}

		current = append(current, piece)
		total += n + sepIf(len(current) > 1)
	}

	if chunk := joinChunk(current, separator); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func splitOn(text, separator string) []string {
	var parts []string
	if separator == "" {
		parts = make([]string, 0, runeLen(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}
	for _, p := range strings.Split(text, separator) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func joinChunk(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
