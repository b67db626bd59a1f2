package vectorstore

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

var _ core.VectorStore = (*Memory)(nil)

// Memory is an in-process vector store using brute-force cosine similarity.
// Entries are partitioned by run ID.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]*runEntries
}

type runEntries struct {
	dim     int
	chunks  []models.TextChunk
	vectors [][]float32
}

func NewMemory() *Memory {
	return &Memory{runs: make(map[string]*runEntries)}
}

func (m *Memory) UpsertChunks(ctx context.Context, runID string, chunks []models.TextChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		run = &runEntries{}
		m.runs[runID] = run
	}
	for _, v := range vectors {
		if run.dim == 0 {
			run.dim = len(v)
		}
		if len(v) == 0 || len(v) != run.dim {
			return errors.New("vector dimension mismatch")
		}
	}

	// Replace chunks already stored under the same ID.
	pos := make(map[string]int, len(run.chunks))
	for i, c := range run.chunks {
		pos[c.ID] = i
	}
	for i, c := range chunks {
		if j, ok := pos[c.ID]; ok {
			run.chunks[j] = c
			run.vectors[j] = vectors[i]
			continue
		}
		pos[c.ID] = len(run.chunks)
		run.chunks = append(run.chunks, c)
		run.vectors = append(run.vectors, vectors[i])
	}
	return nil
}

func (m *Memory) SearchChunks(ctx context.Context, runID string, queryVec []float32, limit int) ([]models.ScoredChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[runID]
	if !ok {
		return []models.ScoredChunk{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	hits := make([]models.ScoredChunk, len(run.chunks))
	for i := range run.chunks {
		hits[i] = models.ScoredChunk{Chunk: run.chunks[i], Score: cosine(run.vectors[i], queryVec)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

// DeleteRun drops everything stored for runID.
func (m *Memory) DeleteRun(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, runID)
	return nil
}

// Runs reports how many runs currently hold entries.
func (m *Memory) Runs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
