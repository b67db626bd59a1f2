package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Scholara/internal/models"
)

func chunk(id string, pos int) models.TextChunk {
	return models.TextChunk{ID: id, Position: pos, Content: "chunk " + id}
}

func TestMemory_SearchOrdersByCosine(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.UpsertChunks(ctx, "run-1",
		[]models.TextChunk{chunk("a", 0), chunk("b", 1), chunk("c", 2)},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
	)
	require.NoError(t, err)

	hits, err := m.SearchChunks(ctx, "run-1", []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Chunk.ID)
	assert.Equal(t, "c", hits[1].Chunk.ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestMemory_RunsAreIsolated(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.UpsertChunks(ctx, "run-1", []models.TextChunk{chunk("a", 0)}, [][]float32{{1, 0}}))
	require.NoError(t, m.UpsertChunks(ctx, "run-2", []models.TextChunk{chunk("b", 0)}, [][]float32{{0, 1}}))

	hits, err := m.SearchChunks(ctx, "run-2", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].Chunk.ID)

	require.NoError(t, m.DeleteRun(ctx, "run-2"))
	assert.Equal(t, 1, m.Runs())
	hits, err = m.SearchChunks(ctx, "run-2", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemory_UpsertReplacesByID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.UpsertChunks(ctx, "r", []models.TextChunk{chunk("a", 0)}, [][]float32{{1, 0}}))
	require.NoError(t, m.UpsertChunks(ctx, "r", []models.TextChunk{chunk("a", 0)}, [][]float32{{0, 1}}))

	hits, err := m.SearchChunks(ctx, "r", []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestMemory_RejectsBadInput(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	assert.Error(t, m.UpsertChunks(ctx, "r", []models.TextChunk{chunk("a", 0)}, nil))

	require.NoError(t, m.UpsertChunks(ctx, "r", []models.TextChunk{chunk("a", 0)}, [][]float32{{1, 0}}))
	assert.Error(t, m.UpsertChunks(ctx, "r", []models.TextChunk{chunk("b", 1)}, [][]float32{{1, 0, 0}}))
}
