package db

import (
	"context"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

// DbClient defines all persistence operations the indexer needs.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	core.VectorStore

	InsertChunks(ctx context.Context, runID string, chunks []models.TextChunk, vectors [][]float32) error
	GetChunksByRun(ctx context.Context, runID string) ([]models.TextChunk, error)

	Close() error
}
