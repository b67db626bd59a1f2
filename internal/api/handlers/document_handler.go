package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/services"
)

// maxUploadBytes caps multipart parsing memory; larger parts spill to disk.
const maxUploadBytes = 32 << 20

type DocumentHandler struct {
	sources *services.SourceService
}

func NewDocumentHandler(sources *services.SourceService) *DocumentHandler {
	return &DocumentHandler{sources: sources}
}

type pdfRequest struct {
	Path string `json:"path"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type topicRequest struct {
	Topic string `json:"topic"`
}

// GetSources returns the current source set.
func (h *DocumentHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sources.Snapshot())
}

func (h *DocumentHandler) AddPDF(w http.ResponseWriter, r *http.Request) {
	var req pdfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	h.respond(w, http.StatusCreated, h.sources.AddPDF(req.Path))
}

func (h *DocumentHandler) AddURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	h.respond(w, http.StatusCreated, h.sources.AddURL(req.URL))
}

func (h *DocumentHandler) RemovePDF(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.sources.RemovePDF(r.URL.Query().Get("path")))
}

func (h *DocumentHandler) RemoveURL(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.sources.RemoveURL(r.URL.Query().Get("url")))
}

func (h *DocumentHandler) ClearSources(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.sources.Clear())
}

func (h *DocumentHandler) SetTopic(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	h.respond(w, http.StatusOK, h.sources.SetTopic(req.Topic))
}

func (h *DocumentHandler) LoadSamples(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.sources.LoadSamples())
}

// UploadDocument stores a multipart "file" PDF and adds it as a source.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rel, err := h.sources.SaveUpload(header.Filename, file)
	if err != nil && !errors.Is(err, core.ConfigIOError) {
		http.Error(w, err.Error(), sourceErrorStatus(err))
		return
	}

	resp := map[string]any{"path": rel, "sources": h.sources.Snapshot()}
	if err != nil {
		resp["warning"] = err.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

// respond writes the updated set on success. A failed save still leaves
// the change in memory, so it is reported with the set and a warning.
func (h *DocumentHandler) respond(w http.ResponseWriter, status int, err error) {
	switch {
	case err == nil:
		writeJSON(w, status, h.sources.Snapshot())
	case errors.Is(err, core.ConfigIOError):
		writeJSON(w, status, map[string]any{
			"sources": h.sources.Snapshot(),
			"warning": err.Error(),
		})
	default:
		http.Error(w, err.Error(), sourceErrorStatus(err))
	}
}

func sourceErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrDuplicateSource):
		return http.StatusConflict
	case errors.Is(err, services.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidSource), errors.Is(err, services.ErrEmptyTopic):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}
