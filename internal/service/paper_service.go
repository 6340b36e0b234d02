package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"paperrag/internal/domain"
	"paperrag/internal/extract"
	"paperrag/internal/generate"
	"paperrag/internal/index"
	"paperrag/internal/logger"
	"paperrag/internal/registry"
	"paperrag/internal/summarizer"
)

// NoResultsReply is returned by Ask when nothing in the index matches the question.
const NoResultsReply = "No relevant information found. Please upload some papers first."

// Options tunes the service.
type Options struct {
	// IndexPath is the snapshot prefix the index is loaded from and saved to.
	IndexPath           string
	TopK                int
	MaxTokens           int
	SummaryMaxTokens    int
	SummaryMaxSentences int
}

// PaperService ingests papers and answers questions over them.
type PaperService struct {
	mu         sync.Mutex
	chunker    domain.Chunker
	index      *index.Index
	registry   registry.Registry
	generator  generate.Generator
	summarizer domain.Summarizer
	opts       Options
	now        func() time.Time
}

// NewPaperService wires the service. gen may be nil, in which case Ask is unavailable
// and summaries are extractive.
func NewPaperService(ch domain.Chunker, ix *index.Index, reg registry.Registry, gen generate.Generator, sum domain.Summarizer, opts Options) *PaperService {
	if opts.TopK <= 0 {
		opts.TopK = index.DefaultTopK
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.SummaryMaxTokens <= 0 {
		opts.SummaryMaxTokens = 500
	}
	if opts.SummaryMaxSentences <= 0 {
		opts.SummaryMaxSentences = summarizer.DefaultMaxSentences
	}
	if sum == nil {
		sum = summarizer.NewFrequencySummarizer()
	}
	return &PaperService{
		chunker:    ch,
		index:      ix,
		registry:   reg,
		generator:  gen,
		summarizer: sum,
		opts:       opts,
		now:        time.Now,
	}
}

// Open loads the persisted index and registers any paper in it that the registry
// does not know yet.
func (s *PaperService) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.IndexPath != "" {
		s.index.Load(s.opts.IndexPath)
	}
	names, counts := s.index.Sources()
	for _, name := range names {
		_, err := s.registry.Get(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		p := domain.Paper{Name: name, Chunks: counts[name], AddedAt: s.now().UTC()}
		if err := s.registry.Add(ctx, p); err != nil {
			return fmt.Errorf("registering %s: %w", name, err)
		}
		logger.Debug("registered %s from index (%d chunks)", name, p.Chunks)
	}
	registered, err := s.registry.List(ctx)
	if err != nil {
		return err
	}
	if stale := len(registered) - len(names); stale > 0 {
		logger.Warn("%d registered papers have no indexed text; add them again to re-index", stale)
	}
	logger.Info("index ready: %d papers, %d chunks", len(names), s.index.Len())
	return nil
}

// AddPaper chunks text, appends it to the index under name, saves the index and then
// registers the paper. A name counts as present only while the index holds its chunks,
// so a paper whose text was lost with a discarded snapshot can be added again.
func (s *PaperService) AddPaper(ctx context.Context, name, text string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty paper name", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.index.ChunksFor(name)) > 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrPaperExists, name)
	}
	chunks := s.chunker.Chunk(text, name)
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: no text extracted from %s", domain.ErrInvalidInput, name)
	}

	prev := s.index.Chunks()
	if err := s.index.AddDocuments(chunks); err != nil {
		return "", err
	}
	if s.opts.IndexPath != "" {
		if err := s.index.Save(s.opts.IndexPath); err != nil {
			s.restore(prev)
			return "", fmt.Errorf("saving index: %w", err)
		}
	}

	p := domain.Paper{Name: name, Chunks: len(chunks), AddedAt: s.now().UTC()}
	if err := s.registry.Add(ctx, p); err != nil {
		if !errors.Is(err, domain.ErrPaperExists) {
			return "", fmt.Errorf("registering %s: %w", name, err)
		}
		// Registry is append-only; the earlier entry stays.
		logger.Warn("re-indexed %s, which was registered without indexed text", name)
	}
	logger.Info("added %s (%d chunks)", name, len(chunks))
	return fmt.Sprintf("Added %d chunks from %s", len(chunks), name), nil
}

// restore rebuilds the index from an earlier corpus. Refitting is deterministic, so the
// vocabulary and vectors match what they were before.
func (s *PaperService) restore(corpus []domain.ChunkRecord) {
	s.index.Reset()
	if err := s.index.AddDocuments(corpus); err != nil {
		logger.Error("restoring index: %v", err)
	}
}

// AddFile extracts the text of path and adds it under its base name.
func (s *PaperService) AddFile(ctx context.Context, path string) (string, error) {
	text, err := extract.File(path)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", path, err)
	}
	return s.AddPaper(ctx, filepath.Base(path), text)
}

// Retrieve returns the chunks most similar to query.
func (s *PaperService) Retrieve(query string, topK int) []domain.SearchResult {
	return s.index.Search(query, topK)
}

// Ask answers question from the top retrieved chunks using the generator.
func (s *PaperService) Ask(ctx context.Context, question string) (domain.Answer, error) {
	hits := s.index.Search(question, s.opts.TopK)
	if len(hits) == 0 {
		return domain.Answer{Text: NoResultsReply}, nil
	}
	if s.generator == nil {
		return domain.Answer{Sources: hits}, domain.ErrNoGenerator
	}
	chunks := make([]domain.ChunkRecord, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}
	text, err := s.generator.Complete(ctx, generate.AnswerPrompt(question, chunks), s.opts.MaxTokens)
	if err != nil {
		return domain.Answer{Sources: hits}, fmt.Errorf("generating answer: %w", err)
	}
	return domain.Answer{Text: text, Sources: hits}, nil
}

// Summarize summarizes a paper from its leading chunks.
func (s *PaperService) Summarize(ctx context.Context, name string) (string, error) {
	if _, err := s.registry.Get(ctx, name); err != nil {
		return "", err
	}
	chunks := s.index.ChunksFor(name)
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: no indexed text for %s", domain.ErrNotFound, name)
	}
	if len(chunks) > generate.SummaryChunks {
		chunks = chunks[:generate.SummaryChunks]
	}
	if s.generator == nil {
		return s.summarizer.Summarize(generate.SampleText(chunks), s.opts.SummaryMaxSentences)
	}
	out, err := s.generator.Complete(ctx, generate.SummaryPrompt(name, chunks), s.opts.SummaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return out, nil
}

// Papers lists the registered papers whose text is in the index.
func (s *PaperService) Papers(ctx context.Context) ([]domain.Paper, error) {
	all, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	_, counts := s.index.Sources()
	papers := make([]domain.Paper, 0, len(all))
	for _, p := range all {
		if counts[p.Name] > 0 {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// Stats reports how many papers and chunks are indexed.
func (s *PaperService) Stats() (papers, chunks int) {
	names, _ := s.index.Sources()
	return len(names), s.index.Len()
}

// Close releases the registry.
func (s *PaperService) Close() error {
	return s.registry.Close()
}
