package ingestion_engine

import (
	"context"
	"fmt"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

// Indexer embeds chunks in batches and writes them to a vector store.
type Indexer struct {
	embedder  core.EmbeddingProvider
	store     core.VectorStore
	batchSize int
}

func NewIndexer(emb core.EmbeddingProvider, store core.VectorStore, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = 16
	}
	return &Indexer{embedder: emb, store: store, batchSize: batchSize}
}

// ChunkIndex is the searchable result of one Build call.
type ChunkIndex struct {
	runID    string
	dim      int
	size     int
	embedder core.EmbeddingProvider
	store    core.VectorStore
}

func (x *ChunkIndex) RunID() string { return x.runID }
func (x *ChunkIndex) Dim() int      { return x.dim }
func (x *ChunkIndex) Len() int      { return x.size }

// Drop removes this index's entries from the store.
func (x *ChunkIndex) Drop(ctx context.Context) error {
	return x.store.DeleteRun(ctx, x.runID)
}

// Search embeds query and returns up to k nearest chunks, best first.
func (x *ChunkIndex) Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}
	vecs, err := x.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, core.Wrap(core.EmbeddingError, "", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != x.dim {
		return nil, core.Errorf(core.EmbeddingError, "", "query vector has unexpected shape")
	}
	hits, err := x.store.SearchChunks(ctx, x.runID, vecs[0], k)
	if err != nil {
		return nil, core.Wrap(core.IndexingError, "", err)
	}
	return hits, nil
}

// Discard removes whatever Build stored for runID, including the batches
// written before a failure.
func (ix *Indexer) Discard(ctx context.Context, runID string) error {
	return ix.store.DeleteRun(ctx, runID)
}

// Build consumes chunks, embeds them in batches, and writes them to the
// store under runID. Every vector must share one non-zero dimension.
func (ix *Indexer) Build(ctx context.Context, runID string, chunks []models.TextChunk) (*ChunkIndex, error) {
	dim := 0

	// flush embeds the current batch and inserts it into the store.
	flush := func(items []models.TextChunk) error {
		if len(items) == 0 {
			return nil
		}

		texts := make([]string, len(items))
		for idx := range items {
			texts[idx] = items[idx].Content
		}

		vecs, err := ix.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return core.Wrap(core.EmbeddingError, "", err)
		}
		if len(vecs) != len(items) {
			return core.Errorf(core.EmbeddingError, "", "embed size mismatch: got %d want %d", len(vecs), len(items))
		}
		for _, v := range vecs {
			if len(v) == 0 {
				return core.Errorf(core.EmbeddingError, "", "empty embedding vector")
			}
			if dim == 0 {
				dim = len(v)
			}
			if len(v) != dim {
				return core.Errorf(core.EmbeddingError, "", "inconsistent embedding dimension: got %d want %d", len(v), dim)
			}
		}

		if err := ix.store.UpsertChunks(ctx, runID, items, vecs); err != nil {
			return core.Wrap(core.IndexingError, "", fmt.Errorf("insert chunks: %w", err))
		}
		return nil
	}

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))
		if err := flush(chunks[start:end]); err != nil {
			return nil, err
		}
	}

	return &ChunkIndex{
		runID:    runID,
		dim:      dim,
		size:     len(chunks),
		embedder: ix.embedder,
		store:    ix.store,
	}, nil
}
