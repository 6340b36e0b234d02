package vectorstore

import (
	"paperrag/internal/domain"
	"paperrag/internal/embedding"
)

// Storage holds the chunk vectors and supports brute-force similarity search.
type Storage interface {
	// Replace swaps in a complete, aligned set of chunks and vectors.
	Replace(chunks []domain.ChunkRecord, vectors []embedding.SparseVector) error
	// Search returns up to topK rows scoring strictly above threshold, best first.
	Search(vector embedding.SparseVector, topK int, threshold float64) []domain.SearchResult
	Chunks() []domain.ChunkRecord
	Vectors() []embedding.SparseVector
	Len() int
	Clear()
}
