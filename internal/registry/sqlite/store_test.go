package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "papers.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestStore_AddGetList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Add(ctx, domain.Paper{Name: "second.pdf", Chunks: 4, AddedAt: t0.Add(time.Minute)}))
	require.NoError(t, s.Add(ctx, domain.Paper{Name: "first.pdf", Chunks: 7, AddedAt: t0}))

	p, err := s.Get(ctx, "first.pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.Paper{Name: "first.pdf", Chunks: 7, AddedAt: t0}, p)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first.pdf", list[0].Name)
	assert.Equal(t, "second.pdf", list[1].Name)
}

func TestStore_Duplicate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.Add(ctx, domain.Paper{Name: "a.pdf", AddedAt: time.Now()}))
	assert.ErrorIs(t, s.Add(ctx, domain.Paper{Name: "a.pdf", AddedAt: time.Now()}), domain.ErrPaperExists)
}

func TestStore_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Get(context.Background(), "nope.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)
	require.NoError(t, s.Add(ctx, domain.Paper{Name: "kept.pdf", Chunks: 1, AddedAt: time.Now()}))
	require.NoError(t, s.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	list, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept.pdf", list[0].Name)
}
