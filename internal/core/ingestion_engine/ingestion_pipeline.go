package ingestion_engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

// NewPipeline wires the stages together. indexer and writer may be nil.
func NewPipeline(
	cfg IngestConfig,
	extractor core.DocumentExtractor,
	generator PaperGenerator,
	indexer *Indexer,
	writer ArtifactWriter,
) (*Pipeline, error) {
	if extractor == nil || generator == nil {
		return nil, fmt.Errorf("pipeline needs an extractor and a generator")
	}
	splitter, err := NewRecursiveSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if cfg.ExtractWorkers < 1 {
		cfg.ExtractWorkers = 1
	}
	return &Pipeline{
		extractor: extractor,
		splitter:  splitter,
		indexer:   indexer,
		generator: generator,
		writer:    writer,
		cfg:       cfg,
	}, nil
}

// LastIndex returns the index of the most recent successful indexed run.
func (p *Pipeline) LastIndex() *ChunkIndex {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastIndex
}

// LastReport returns the report of the most recent successful run.
func (p *Pipeline) LastReport() *models.RunReport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastReport
}

// Run executes one pass over set. Failures of individual sources are
// recorded in the report and never abort the run. The returned report is
// populated on both success and failure.
func (p *Pipeline) Run(ctx context.Context, set models.SourceSet, obs Observer) (*models.RunReport, error) {
	if obs == nil {
		obs = ObserverFuncs{}
	}

	report := &models.RunReport{
		RunID:     uuid.NewString(),
		Topic:     set.Topic,
		State:     string(StageIdle),
		Failures:  []models.SourceFailure{},
		StartedAt: time.Now().UTC(),
	}
	// indexStarted marks that the store may hold entries for this run.
	indexStarted := false
	enter := func(s Stage) {
		report.State = string(s)
		obs.OnStage(s)
	}
	fail := func(err error) (*models.RunReport, error) {
		report.Error = err.Error()
		report.FinishedAt = time.Now().UTC()
		if indexStarted {
			if derr := p.indexer.Discard(context.WithoutCancel(ctx), report.RunID); derr != nil {
				log.Printf("Pipeline: WARN could not discard index of run %s: %v", report.RunID, derr)
			}
		}
		enter(StageFailed)
		log.Printf("Pipeline: run %s failed: %v", report.RunID, err)
		return report, err
	}

	sources := set.Sources()
	report.TotalSources = len(sources)
	log.Printf("Pipeline: run %s started (%d sources, topic %q)", report.RunID, len(sources), set.Topic)

	enter(StageExtractingSources)
	results := p.extractAll(ctx, sources, obs)
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	enter(StageAggregating)
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.OK() {
			parts = append(parts, r.Text)
			report.Succeeded++
			continue
		}
		report.Failures = append(report.Failures, models.SourceFailure{
			Source: r.Source,
			Kind:   string(core.KindOf(r.Err)),
			Reason: r.Err.Error(),
		})
		log.Printf("Pipeline: skipping %s source %s: %v", r.Source.Kind, r.Source.Ref, r.Err)
	}
	aggregate := strings.Join(parts, "\n\n")
	report.AggregatedChars = utf8.RuneCountInString(aggregate)
	if strings.TrimSpace(aggregate) == "" {
		return fail(&core.Error{Kind: core.NoUsableSources})
	}

	enter(StageChunking)
	chunks, err := p.splitter.Split(aggregate)
	if err != nil {
		return fail(core.Wrap(core.ChunkingError, "", err))
	}
	report.ChunkCount = len(chunks)
	log.Printf("Pipeline: run %s produced %d chunks from %d chars", report.RunID, len(chunks), report.AggregatedChars)

	var index *ChunkIndex
	if p.indexer != nil {
		enter(StageIndexing)
		indexStarted = true
		index, err = p.indexer.Build(ctx, report.RunID, chunks)
		if err != nil {
			return fail(wrapKind(core.IndexingError, err))
		}
		report.Indexed = true
	}

	enter(StageGenerating)
	paper, err := p.generator.Generate(ctx, set.Topic, joinChunks(chunks))
	if err != nil {
		return fail(wrapKind(core.GenerationError, err))
	}
	report.Paper = paper

	if p.writer != nil {
		local, remote, err := p.writer.Write(ctx, report.RunID, paper)
		if err != nil {
			report.Paper = nil
			return fail(wrapKind(core.ArtifactError, err))
		}
		report.OutputPath = local
		report.RemoteURL = remote
	}

	report.FinishedAt = time.Now().UTC()
	enter(StageDone)
	log.Printf("Pipeline: run %s done (%d/%d sources used)", report.RunID, report.Succeeded, report.TotalSources)

	// Only the newest index stays searchable; the one it replaces is dropped.
	var stale *ChunkIndex
	p.mu.Lock()
	p.lastReport = report
	if index != nil {
		stale = p.lastIndex
		p.lastIndex = index
	}
	p.mu.Unlock()
	if stale != nil {
		if err := stale.Drop(context.WithoutCancel(ctx)); err != nil {
			log.Printf("Pipeline: WARN could not drop index of run %s: %v", stale.RunID(), err)
		}
	}

	return report, nil
}

// extractAll processes sources with at most cfg.ExtractWorkers in flight.
// Results keep the order of sources regardless of completion order.
func (p *Pipeline) extractAll(ctx context.Context, sources []models.Source, obs Observer) []core.ExtractedText {
	results := make([]core.ExtractedText, len(sources))

	var (
		mu   sync.Mutex
		done int
	)

	var g errgroup.Group
	g.SetLimit(p.cfg.ExtractWorkers)
	for i, src := range sources {
		g.Go(func() error {
			text, err := p.extractOne(ctx, src)
			results[i] = core.ExtractedText{Source: src, Text: text, Err: err}

			// Report under the lock so fractions arrive in increasing order.
			mu.Lock()
			done++
			obs.OnProgress(float64(done) / float64(len(sources)))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pipeline) extractOne(ctx context.Context, src models.Source) (string, error) {
	var (
		text string
		err  error
	)
	switch src.Kind {
	case models.SourcePDF:
		log.Printf("Pipeline: processing PDF %s", src.Ref)
		text, err = p.extractor.ExtractFromPDF(ctx, src.Ref)
	case models.SourceURL:
		log.Printf("Pipeline: processing URL %s", src.Ref)
		text, err = p.extractor.ExtractFromURL(ctx, src.Ref)
	default:
		return "", core.Errorf(core.ExtractionError, src.Ref, "unknown source kind %q", src.Kind)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &core.Error{Kind: core.NoTextExtracted, Source: src.Ref}
	}
	return text, nil
}

// joinChunks rebuilds generation input from chunk contents.
func joinChunks(chunks []models.TextChunk) string {
	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}
	return strings.Join(contents, " ")
}

// wrapKind tags err with kind unless it already carries it.
func wrapKind(kind core.Kind, err error) error {
	if core.KindOf(err) == kind {
		return err
	}
	return core.Wrap(kind, "", err)
}
