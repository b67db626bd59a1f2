package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/markdave123-py/Scholara/internal/core/ingestion_engine"
	"github.com/markdave123-py/Scholara/internal/models"
)

const (
	defaultSearchK = 5
	maxSearchK     = 50
)

// IndexSource exposes the chunk index of the most recent indexed run.
type IndexSource interface {
	LastIndex() *ingestion_engine.ChunkIndex
}

type SearchHandler struct {
	indexes IndexSource
}

func NewSearchHandler(indexes IndexSource) *SearchHandler {
	return &SearchHandler{indexes: indexes}
}

type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type SearchResponse struct {
	RunID   string               `json:"run_id"`
	Results []models.ScoredChunk `json:"results"`
}

// Search returns the chunks of the last run closest to the query.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query must not be empty", http.StatusBadRequest)
		return
	}

	index := h.indexes.LastIndex()
	if index == nil {
		http.Error(w, "no index available: enable indexing and generate a paper first", http.StatusConflict)
		return
	}

	k := req.K
	if k <= 0 {
		k = defaultSearchK
	}
	k = min(k, maxSearchK)

	hits, err := index.Search(r.Context(), req.Query, k)
	if err != nil {
		http.Error(w, fmt.Sprintf("search failed: %v", err), http.StatusInternalServerError)
		return
	}
	if hits == nil {
		hits = []models.ScoredChunk{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{RunID: index.RunID(), Results: hits})
}
