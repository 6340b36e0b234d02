package memory

import (
	"errors"
	"math"
	"sort"
	"sync"

	"paperrag/internal/domain"
	"paperrag/internal/embedding"
	"paperrag/internal/vectorstore"
)

// ErrLengthMismatch is returned when chunks and vectors are not aligned.
var ErrLengthMismatch = errors.New("chunks and vectors length mismatch")

// Storage is an in-memory vector matrix using brute-force cosine similarity.
type Storage struct {
	mu      sync.RWMutex
	vectors []embedding.SparseVector
	chunks  []domain.ChunkRecord
}

var _ vectorstore.Storage = (*Storage)(nil)

func NewStorage() *Storage { return &Storage{} }

// Replace installs chunks and vectors as one unit. On error the previous rows are kept.
func (s *Storage) Replace(chunks []domain.ChunkRecord, vectors []embedding.SparseVector) error {
	if len(chunks) != len(vectors) {
		return ErrLengthMismatch
	}
	c := append([]domain.ChunkRecord(nil), chunks...)
	v := append([]embedding.SparseVector(nil), vectors...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = c
	s.vectors = v
	return nil
}

// Search scores every row by dot product (rows and query are unit length, so this is
// the cosine). Ties keep insertion order.
func (s *Storage) Search(vector embedding.SparseVector, topK int, threshold float64) []domain.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 || len(s.vectors) == 0 || vector.IsZero() {
		return nil
	}
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = math.Min(s.vectors[i].Dot(vector), 1)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		if scores[j] <= threshold {
			break
		}
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results
}

func (s *Storage) Chunks() []domain.ChunkRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChunkRecord(nil), s.chunks...)
}

func (s *Storage) Vectors() []embedding.SparseVector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]embedding.SparseVector, len(s.vectors))
	for i, v := range s.vectors {
		out[i] = v.Clone()
	}
	return out
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
