// Package index keeps the corpus of chunk records together with a TF-IDF vocabulary
// model and the vector matrix derived from it. Every append refits the vocabulary over
// the whole corpus and revectorizes every chunk.
package index

import (
	"errors"
	"fmt"
	"sync"

	"paperrag/internal/domain"
	"paperrag/internal/embedding"
	"paperrag/internal/embedding/tfidf"
	"paperrag/internal/logger"
	"paperrag/internal/snapshot"
	"paperrag/internal/vectorstore"
	"paperrag/internal/vectorstore/memory"
)

const (
	// DefaultTopK is the default number of results per query.
	DefaultTopK = 5
	// DefaultThreshold is the minimum similarity a result must exceed.
	DefaultThreshold = 0.1
)

// Index is the ordered corpus plus its vocabulary model and vectors.
// Searches may run concurrently; writers must be serialised by the caller.
type Index struct {
	mu        sync.RWMutex
	maxTerms  int
	threshold float64
	model     *tfidf.Model
	store     vectorstore.Storage
}

// Option configures an Index.
type Option func(*Index)

// WithMaxTerms caps the vocabulary size.
func WithMaxTerms(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.maxTerms = n
		}
	}
}

// WithThreshold sets the minimum similarity; results at or below it are dropped.
func WithThreshold(t float64) Option {
	return func(ix *Index) { ix.threshold = t }
}

// WithStorage replaces the default in-memory vector storage.
func WithStorage(s vectorstore.Storage) Option {
	return func(ix *Index) {
		if s != nil {
			ix.store = s
		}
	}
}

// New returns an empty index.
func New(opts ...Option) *Index {
	ix := &Index{
		maxTerms:  tfidf.DefaultMaxTerms,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(ix)
	}
	if ix.store == nil {
		ix.store = memory.NewStorage()
	}
	ix.model = tfidf.New(ix.maxTerms)
	return ix
}

// Threshold returns the minimum similarity.
func (ix *Index) Threshold() float64 { return ix.threshold }

// Vectorizer returns the current vocabulary model.
func (ix *Index) Vectorizer() embedding.Vectorizer {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.model
}

// AddDocuments appends chunks and rebuilds the vocabulary and every vector.
// On error the index is unchanged.
func (ix *Index) AddDocuments(chunks []domain.ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	corpus := append(ix.store.Chunks(), chunks...)
	texts := make([]string, len(corpus))
	for i, c := range corpus {
		texts[i] = c.Text
	}

	model := tfidf.New(ix.maxTerms)
	model.Fit(texts)
	vectors := make([]embedding.SparseVector, len(texts))
	for i, text := range texts {
		vectors[i] = model.Transform(text)
	}
	if err := ix.store.Replace(corpus, vectors); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	ix.model = model
	logger.Debug("index rebuilt: %d chunks, %d terms", len(corpus), model.Dimension())
	return nil
}

// Search returns up to topK chunks whose similarity to query exceeds the threshold,
// best first with ties in insertion order. An empty or unfit index yields no results.
func (ix *Index) Search(query string, topK int) []domain.SearchResult {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if topK <= 0 || !ix.model.Fitted() || ix.store.Len() == 0 {
		return nil
	}
	return ix.store.Search(ix.model.Transform(query), topK, ix.threshold)
}

// Len returns the number of chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.store.Len()
}

// Chunks returns a copy of the corpus in insertion order.
func (ix *Index) Chunks() []domain.ChunkRecord {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.store.Chunks()
}

// ChunksFor returns the chunks of one source in insertion order.
func (ix *Index) ChunksFor(sourceName string) []domain.ChunkRecord {
	var out []domain.ChunkRecord
	for _, c := range ix.Chunks() {
		if c.SourceName == sourceName {
			out = append(out, c)
		}
	}
	return out
}

// Sources returns the distinct source names with their chunk counts, in first-seen order.
func (ix *Index) Sources() ([]string, map[string]int) {
	counts := make(map[string]int)
	var names []string
	for _, c := range ix.Chunks() {
		if _, ok := counts[c.SourceName]; !ok {
			names = append(names, c.SourceName)
		}
		counts[c.SourceName]++
	}
	return names, counts
}

// Reset empties the index.
func (ix *Index) Reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.reset()
}

func (ix *Index) reset() {
	ix.store.Clear()
	ix.model = tfidf.New(ix.maxTerms)
}

// Save writes the corpus, vocabulary model and vectors under prefix.
func (ix *Index) Save(prefix string) error {
	ix.mu.RLock()
	s := &snapshot.Snapshot{
		Chunks:  ix.store.Chunks(),
		Model:   ix.model.State(),
		Vectors: ix.store.Vectors(),
	}
	ix.mu.RUnlock()
	if err := snapshot.Write(prefix, s); err != nil {
		return err
	}
	logger.Debug("index saved to %s (generation %s, %d chunks)", prefix, s.Generation, len(s.Chunks))
	return nil
}

// Load replaces the index with the snapshot under prefix. Missing, mismatched or
// unreadable artifacts leave the index empty; only a missing set is silent, the rest
// are logged as warnings. The next Save overwrites whatever was on disk.
func (ix *Index) Load(prefix string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.reset()

	s, err := snapshot.Read(prefix)
	if errors.Is(err, snapshot.ErrNotFound) {
		logger.Debug("no index at %s, starting empty", prefix)
		return
	}
	if err == nil {
		err = ix.restore(s)
	}
	if err != nil {
		logger.Warn("discarding index at %s: %v", prefix, err)
		ix.reset()
		return
	}
	logger.Debug("index loaded from %s: %d chunks, %d terms", prefix, len(s.Chunks), ix.model.Dimension())
}

func (ix *Index) restore(s *snapshot.Snapshot) error {
	model, err := tfidf.FromState(s.Model)
	if err != nil {
		return err
	}
	if err := ix.store.Replace(s.Chunks, s.Vectors); err != nil {
		return err
	}
	ix.model = model
	return nil
}
