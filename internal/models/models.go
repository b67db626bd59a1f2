package models

import (
	"time"
)

// SourceKind tells the pipeline which extractor a source needs.
type SourceKind string

const (
	SourcePDF SourceKind = "pdf"
	SourceURL SourceKind = "url"
)

// Source is one input reference. Its identity is Ref (the path or URL).
type Source struct {
	Kind SourceKind `json:"kind"`
	Ref  string     `json:"ref"`
}

// SourceSet is the persisted list of sources plus the research topic.
// Field order and JSON names match sources.json.
type SourceSet struct {
	PDFs  []string `json:"pdfs"`
	URLs  []string `json:"urls"`
	Topic string   `json:"topic"`
}

// Sources flattens the set in processing order: every PDF, then every URL.
func (s SourceSet) Sources() []Source {
	out := make([]Source, 0, len(s.PDFs)+len(s.URLs))
	for _, p := range s.PDFs {
		out = append(out, Source{Kind: SourcePDF, Ref: p})
	}
	for _, u := range s.URLs {
		out = append(out, Source{Kind: SourceURL, Ref: u})
	}
	return out
}

// Clone returns a deep copy; empty lists are never nil.
func (s SourceSet) Clone() SourceSet {
	return SourceSet{
		PDFs:  append(make([]string, 0, len(s.PDFs)), s.PDFs...),
		URLs:  append(make([]string, 0, len(s.URLs)), s.URLs...),
		Topic: s.Topic,
	}
}

// TextChunk is one slice of the aggregated text.
type TextChunk struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Content  string `json:"content"`
}

// ScoredChunk is a similarity search hit.
type ScoredChunk struct {
	Chunk TextChunk `json:"chunk"`
	Score float64   `json:"score"`
}

// SourceFailure records a source that contributed no text to a run.
type SourceFailure struct {
	Source Source `json:"source"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// Paper is the generated research paper.
type Paper struct {
	Topic        string `json:"topic"`
	Content      string `json:"content"`
	Truncated    bool   `json:"truncated"`
	DroppedChars int    `json:"dropped_chars"`
}

// RunReport summarises a single pipeline run.
type RunReport struct {
	RunID           string          `json:"run_id"`
	Topic           string          `json:"topic"`
	State           string          `json:"state"`
	TotalSources    int             `json:"total_sources"`
	Succeeded       int             `json:"succeeded"`
	Failures        []SourceFailure `json:"failures"`
	AggregatedChars int             `json:"aggregated_chars"`
	ChunkCount      int             `json:"chunk_count"`
	Indexed         bool            `json:"indexed"`
	Paper           *Paper          `json:"paper,omitempty"`
	OutputPath      string          `json:"output_path,omitempty"`
	RemoteURL       string          `json:"remote_url,omitempty"`
	Error           string          `json:"error,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      time.Time       `json:"finished_at"`
}
