package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"paperrag/internal/domain"
)

type fakeService struct {
	added     map[string]bool
	results   []domain.SearchResult
	answer    domain.Answer
	askErr    error
	summaries map[string]string
	papers    []domain.Paper
	lastTopK  int
	closed    bool
}

func newFakeService() *fakeService {
	return &fakeService{added: make(map[string]bool), summaries: make(map[string]string)}
}

func (f *fakeService) AddFile(_ context.Context, path string) (string, error) {
	if f.added[path] {
		return "", fmt.Errorf("%w: %s", domain.ErrPaperExists, path)
	}
	f.added[path] = true
	return fmt.Sprintf("Added 3 chunks from %s", path), nil
}

func (f *fakeService) Retrieve(_ string, topK int) []domain.SearchResult {
	f.lastTopK = topK
	if len(f.results) > topK {
		return f.results[:topK]
	}
	return f.results
}

func (f *fakeService) Ask(context.Context, string) (domain.Answer, error) {
	return f.answer, f.askErr
}

func (f *fakeService) Summarize(_ context.Context, name string) (string, error) {
	s, ok := f.summaries[name]
	if !ok {
		return "", fmt.Errorf("%w: paper %s", domain.ErrNotFound, name)
	}
	return s, nil
}

func (f *fakeService) Papers(context.Context) ([]domain.Paper, error) { return f.papers, nil }

func (f *fakeService) Stats() (int, int) { return len(f.papers), 0 }

func (f *fakeService) Close() error {
	f.closed = true
	return nil
}

// setupTestService injects a fake service and restores package state afterwards.
func setupTestService(t *testing.T) *fakeService {
	t.Helper()
	f := newFakeService()
	SetService(f)
	t.Cleanup(resetState)
	return f
}

func resetState() {
	paperService = nil
	ownsService = false
	appConfig = nil
	cfgPath, indexPath, verbose = "", "", false
	searchLimit, searchJSON = 0, false
	papersJSON = false
	rootCmd.SetArgs(nil)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}
