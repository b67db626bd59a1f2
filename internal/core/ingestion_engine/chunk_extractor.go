package ingestion_engine

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

const (
	// DefaultChunkSize is the maximum number of characters per chunk.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the number of tail characters carried into the next chunk.
	DefaultChunkOverlap = 150
)

// ErrInvalidChunkConfig is returned when chunk size and overlap are inconsistent.
var ErrInvalidChunkConfig = errors.New("chunk size must be greater than overlap, and overlap must not be negative")

// defaultSeparators go from coarsest to finest; "" means character slicing.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter splits text on the coarsest separator present and
// re-splits oversized segments with finer ones.
//
// chunkSize:  maximum characters (code points) per chunk.
// overlap:    characters retained from the end of a chunk as the seed of the next.
// separators: split points, coarsest first.
type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewRecursiveSplitter validates chunkSize > overlap >= 0.
func NewRecursiveSplitter(chunkSize, overlap int) (*RecursiveSplitter, error) {
	if overlap < 0 || chunkSize <= overlap {
		return nil, ErrInvalidChunkConfig
	}
	return &RecursiveSplitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// ChunkSize returns the configured maximum chunk length.
func (s *RecursiveSplitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap length.
func (s *RecursiveSplitter) Overlap() int { return s.overlap }

// Split returns the ordered chunks of text.
func (s *RecursiveSplitter) Split(text string) ([]models.TextChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &core.Error{Kind: core.EmptyInput}
	}

	pieces := s.splitText(text, s.separators)
	if len(pieces) == 0 {
		return nil, &core.Error{Kind: core.NoChunksProduced}
	}

	chunks := make([]models.TextChunk, len(pieces))
	for pos, p := range pieces {
		chunks[pos] = models.TextChunk{
			ID:       uuid.NewString(),
			Position: pos,
			Content:  p,
		}
	}
	return chunks, nil
}

func (s *RecursiveSplitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var (
		final []string
		good  []string
	)
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(finer) == 0 {
			// Nothing finer to try; keep the oversized piece as is.
			if trimmed := strings.TrimSpace(piece); trimmed != "" {
				final = append(final, trimmed)
			}
			continue
		}
		final = append(final, s.splitText(piece, finer)...)
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge packs consecutive small pieces into chunks of at most chunkSize,
// seeding each new chunk with a tail of at most overlap characters.
func (s *RecursiveSplitter) merge(pieces []string) []string {
	var (
		docs    []string
		current []string
		total   int
	)

	flush := func() {
		if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
			docs = append(docs, doc)
		}
	}

	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.chunkSize && len(current) > 0 {
			flush()
			// Drop from the head until what is left fits as overlap.
			for len(current) > 0 && (total > s.overlap || total+n > s.chunkSize) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	flush()
	return docs
}

// splitKeepingSeparator splits text on sep and re-attaches sep to the
// start of every following piece, so joining the pieces gives back text.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		return strings.Split(text, "")
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
