package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/domain"
)

func TestMemory_AddGetList(t *testing.T) {
	ctx := context.Background()
	r := NewMemory()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Add(ctx, domain.Paper{Name: "b.pdf", Chunks: 2, AddedAt: t0.Add(time.Hour)}))
	require.NoError(t, r.Add(ctx, domain.Paper{Name: "a.pdf", Chunks: 3, AddedAt: t0}))

	p, err := r.Get(ctx, "b.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Chunks)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a.pdf", list[0].Name)
	assert.Equal(t, "b.pdf", list[1].Name)
}

func TestMemory_Errors(t *testing.T) {
	ctx := context.Background()
	r := NewMemory()
	require.NoError(t, r.Add(ctx, domain.Paper{Name: "a.pdf"}))

	assert.ErrorIs(t, r.Add(ctx, domain.Paper{Name: "a.pdf"}), domain.ErrPaperExists)
	assert.ErrorIs(t, r.Add(ctx, domain.Paper{}), domain.ErrInvalidInput)

	_, err := r.Get(ctx, "missing.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, r.Close())
}
