package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/core/ingestion_engine"
	"github.com/markdave123-py/Scholara/internal/services"
)

type PaperHandler struct {
	runner  ingestion_engine.Runner
	sources *services.SourceService

	// running admits one pipeline run at a time.
	running sync.Mutex
}

func NewPaperHandler(runner ingestion_engine.Runner, sources *services.SourceService) *PaperHandler {
	return &PaperHandler{runner: runner, sources: sources}
}

// GeneratePaper runs the pipeline over the current sources and returns the
// run report. The report is returned on failure too, with a matching status.
func (h *PaperHandler) GeneratePaper(w http.ResponseWriter, r *http.Request) {
	if !h.running.TryLock() {
		http.Error(w, "a paper is already being generated", http.StatusConflict)
		return
	}
	defer h.running.Unlock()

	report, err := h.runner.Run(r.Context(), h.sources.Snapshot(), nil)
	if err != nil {
		writeJSON(w, runErrorStatus(err), report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// LatestPaper downloads the markdown of the last successful run.
func (h *PaperHandler) LatestPaper(w http.ResponseWriter, r *http.Request) {
	report := h.runner.LastReport()
	if report == nil || report.Paper == nil {
		http.Error(w, "no paper has been generated yet", http.StatusNotFound)
		return
	}

	content := []byte(report.Paper.Content)
	name := "research_paper.md"
	if report.OutputPath != "" {
		data, err := os.ReadFile(report.OutputPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("read paper: %v", err), http.StatusInternalServerError)
			return
		}
		content = data
		name = filepath.Base(report.OutputPath)
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.NoUsableSources):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.GenerationError), errors.Is(err, core.IndexingError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
