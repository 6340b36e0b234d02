// Package registry records which papers have been ingested. The registry is
// append-only and keyed by paper name, kept separate from the chunk corpus.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"paperrag/internal/domain"
)

// Registry is an append-only set of papers keyed by name.
type Registry interface {
	// Add registers p. A name that is already present yields domain.ErrPaperExists.
	Add(ctx context.Context, p domain.Paper) error
	Get(ctx context.Context, name string) (domain.Paper, error)
	// List returns papers ordered by time added, then name.
	List(ctx context.Context) ([]domain.Paper, error)
	Close() error
}

// Memory is an in-process Registry.
type Memory struct {
	mu     sync.RWMutex
	papers map[string]domain.Paper
	order  []string
}

var _ Registry = (*Memory)(nil)

// NewMemory returns an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{papers: make(map[string]domain.Paper)}
}

func (m *Memory) Add(_ context.Context, p domain.Paper) error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty paper name", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.papers[p.Name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrPaperExists, p.Name)
	}
	m.papers[p.Name] = p
	m.order = append(m.order, p.Name)
	return nil
}

func (m *Memory) Get(_ context.Context, name string) (domain.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.papers[name]
	if !ok {
		return domain.Paper{}, fmt.Errorf("%w: paper %s", domain.ErrNotFound, name)
	}
	return p, nil
}

func (m *Memory) List(_ context.Context) ([]domain.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Paper, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.papers[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (m *Memory) Close() error { return nil }
