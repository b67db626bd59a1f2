package ingestion_engine

import (
	"context"
	"sync"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

// IngestConfig tunes the pipeline.
//
// ChunkSize:      maximum characters per chunk (e.g., 1000).
// ChunkOverlap:   characters carried from one chunk into the next (e.g., 150).
// BatchSize:      how many chunks to embed/write in one batch when indexing (e.g., 16).
// ExtractWorkers: sources extracted concurrently; 1 keeps extraction sequential.
type IngestConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	BatchSize      int
	ExtractWorkers int
}

// DefaultIngestConfig mirrors the defaults in config.LoadConfig.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		ChunkSize:      DefaultChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		BatchSize:      16,
		ExtractWorkers: 1,
	}
}

// Stage is a state of a pipeline run.
type Stage string

const (
	StageIdle              Stage = "idle"
	StageExtractingSources Stage = "extracting_sources"
	StageAggregating       Stage = "aggregating"
	StageChunking          Stage = "chunking"
	StageIndexing          Stage = "indexing"
	StageGenerating        Stage = "generating"
	StageDone              Stage = "done"
	StageFailed            Stage = "failed"
)

// Observer receives run progress. Fractions are processed/total sources and
// never decrease within a run; OnStage fires once per stage entered.
type Observer interface {
	OnProgress(fraction float64)
	OnStage(stage Stage)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Progress func(fraction float64)
	Stage    func(stage Stage)
}

func (o ObserverFuncs) OnProgress(fraction float64) {
	if o.Progress != nil {
		o.Progress(fraction)
	}
}

func (o ObserverFuncs) OnStage(stage Stage) {
	if o.Stage != nil {
		o.Stage(stage)
	}
}

// PaperGenerator turns a topic and its source text into a paper.
type PaperGenerator interface {
	Generate(ctx context.Context, topic, text string) (*models.Paper, error)
}

// ArtifactWriter persists a finished paper and reports where it went.
type ArtifactWriter interface {
	Write(ctx context.Context, runID string, paper *models.Paper) (localPath, remoteURL string, err error)
}

// Pipeline orchestrates extract -> aggregate -> chunk -> [index] -> generate.
//
// extractor: PDF/URL text extraction.
// splitter:  recursive character chunker.
// indexer:   optional; nil skips the Indexing stage.
// generator: LLM-backed paper generator.
// writer:    optional artifact sink, only invoked for successful runs.
// cfg:       runtime tuning knobs for the pipeline.
// last*:     state of the most recent successful run, guarded by mu.
type Pipeline struct {
	extractor core.DocumentExtractor
	splitter  *RecursiveSplitter
	indexer   *Indexer
	generator PaperGenerator
	writer    ArtifactWriter
	cfg       IngestConfig

	mu         sync.RWMutex
	lastIndex  *ChunkIndex
	lastReport *models.RunReport
}
