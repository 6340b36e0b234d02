package chunker

import (
	"fmt"
	"strings"

	"paperrag/internal/domain"
)

const (
	// DefaultChunkSize is the default window length in words.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is the default number of words shared by consecutive windows.
	DefaultChunkOverlap = 50
)

// WordChunker splits text into overlapping fixed-size word windows.
type WordChunker struct {
	chunkSize    int
	chunkOverlap int
}

// New returns a chunker for the given window size and overlap. The overlap must be
// smaller than the size; invalid combinations are rejected, never clamped.
func New(chunkSize, chunkOverlap int) (*WordChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidConfig, chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("%w: chunk_overlap must not be negative, got %d", domain.ErrInvalidConfig, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			domain.ErrInvalidConfig, chunkOverlap, chunkSize)
	}
	return &WordChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// Size returns the window length in words.
func (c *WordChunker) Size() int { return c.chunkSize }

// Overlap returns the number of words shared by consecutive windows.
func (c *WordChunker) Overlap() int { return c.chunkOverlap }

// Chunk splits text on whitespace and emits one record per window. Sequence ids restart
// at 0 for every call. Original spacing is not preserved.
func (c *WordChunker) Chunk(text, sourceName string) []domain.ChunkRecord {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	stride := c.chunkSize - c.chunkOverlap
	chunks := make([]domain.ChunkRecord, 0, len(words)/stride+1)
	for start := 0; ; start += stride {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, domain.ChunkRecord{
			Text:       strings.Join(words[start:end], " "),
			SourceName: sourceName,
			Page:       start/c.chunkSize + 1,
			SequenceID: len(chunks),
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}
