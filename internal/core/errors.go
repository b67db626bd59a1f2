package core

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures. A Kind is itself an error so callers
// can write errors.Is(err, core.NotFound).
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	NotFound         Kind = "not found"
	NoTextExtracted  Kind = "no text extracted"
	ExtractionError  Kind = "extraction error"
	NetworkError     Kind = "network error"
	HTTPError        Kind = "http error"
	EmptyInput       Kind = "empty input"
	NoChunksProduced Kind = "no chunks produced"
	EmbeddingError   Kind = "embedding error"
	GenerationError  Kind = "generation error"
	NoUsableSources  Kind = "no usable sources"
	ConfigIOError    Kind = "config io error"
	ChunkingError    Kind = "chunking error"
	IndexingError    Kind = "indexing error"
	ArtifactError    Kind = "artifact error"
)

// Error is the concrete error returned by extractors, the chunker, the
// indexer, the generator and the orchestrator.
//
// Kind:   failure class.
// Source: path or URL the failure relates to, if any.
// Status: HTTP status code for HTTPError.
// Err:    underlying cause.
type Error struct {
	Kind   Kind
	Source string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Kind == HTTPError && e.Status != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.Status)
	}
	if e.Source != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Source)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare Kind against this error's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Errorf builds an *Error of the given kind with a formatted cause.
func Errorf(kind Kind, source string, format string, args ...any) *Error {
	return &Error{Kind: kind, Source: source, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to an existing cause.
func Wrap(kind Kind, source string, err error) *Error {
	return &Error{Kind: kind, Source: source, Err: err}
}

// KindOf returns the outermost Kind found in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}
