package core

import (
	"context"

	"github.com/markdave123-py/Scholara/internal/models"
)

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// VectorStore persists chunk embeddings per run and answers nearest-neighbour queries.
// It abstracts memory/pgvector so the indexer never depends on a specific backend.
type VectorStore interface {
	UpsertChunks(ctx context.Context, runID string, chunks []models.TextChunk, vectors [][]float32) error
	SearchChunks(ctx context.Context, runID string, queryVec []float32, limit int) ([]models.ScoredChunk, error)
	DeleteRun(ctx context.Context, runID string) error
}
