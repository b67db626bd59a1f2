package ingestion_engine

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Scholara/internal/core"
)

// overlapLen returns the length of the longest prefix of next that is also a
// suffix of prev.
func overlapLen(prev, next string) int {
	n := len(next)
	if len(prev) < n {
		n = len(prev)
	}
	for k := n; k > 0; k-- {
		if strings.HasSuffix(prev, next[:k]) {
			return k
		}
	}
	return 0
}

func TestNewRecursiveSplitter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := NewRecursiveSplitter(DefaultChunkSize, DefaultChunkOverlap)
		require.NoError(t, err)
		assert.Equal(t, 1000, s.ChunkSize())
		assert.Equal(t, 150, s.Overlap())
	})

	bad := []struct {
		name          string
		size, overlap int
	}{
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"negative overlap", 100, -1},
		{"zero size", 0, 0},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRecursiveSplitter(tc.size, tc.overlap)
			assert.ErrorIs(t, err, ErrInvalidChunkConfig)
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	s, err := NewRecursiveSplitter(100, 10)
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\n\t"} {
		chunks, err := s.Split(text)
		assert.ErrorIs(t, err, core.EmptyInput)
		assert.Nil(t, chunks)
	}
}

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	s, err := NewRecursiveSplitter(DefaultChunkSize, DefaultChunkOverlap)
	require.NoError(t, err)

	chunks, err := s.Split("  Rising temperatures reduce crop yields.  ")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Rising temperatures reduce crop yields.", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Position)
	assert.NotEmpty(t, chunks[0].ID)
}

func TestSplit_WordsWithOverlap(t *testing.T) {
	s, err := NewRecursiveSplitter(1000, 150)
	require.NoError(t, err)

	text := "x" + "abcdefghi" + strings.Repeat(" abcdefghi", 239)
	require.Equal(t, 2400, len(text))

	chunks, err := s.Split(text)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), 1000)
		assert.Equal(t, i, c.Position)
		assert.Equal(t, strings.TrimSpace(c.Content), c.Content)
	}
	assert.True(t, strings.HasPrefix(chunks[0].Content, "xabcdefghi"))
	assert.True(t, strings.HasSuffix(chunks[2].Content, "abcdefghi"))

	for i := 1; i < len(chunks); i++ {
		ov := overlapLen(chunks[i-1].Content, chunks[i].Content)
		assert.GreaterOrEqual(t, ov, 140, "chunk %d overlap", i)
		assert.LessOrEqual(t, ov, 150, "chunk %d overlap", i)
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	s, err := NewRecursiveSplitter(30, 0)
	require.NoError(t, err)

	chunks, err := s.Split("aaaa aaaa aaaa aaaa\n\nbbbb bbbb bbbb bbbb")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa aaaa aaaa aaaa", chunks[0].Content)
	assert.Equal(t, "bbbb bbbb bbbb bbbb", chunks[1].Content)
}

func TestSplit_FallsBackToCharacters(t *testing.T) {
	s, err := NewRecursiveSplitter(100, 20)
	require.NoError(t, err)

	chunks, err := s.Split(strings.Repeat("x", 250))
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0].Content, 100)
	assert.Len(t, chunks[1].Content, 100)
	assert.Len(t, chunks[2].Content, 90)
}

func TestSplit_MeasuresCodePoints(t *testing.T) {
	s, err := NewRecursiveSplitter(100, 10)
	require.NoError(t, err)

	text := strings.Repeat("héllo wörld ", 300)
	chunks, err := s.Split(text)
	require.NoError(t, err)

	total := utf8.RuneCountInString(strings.TrimSpace(text))
	assert.GreaterOrEqual(t, len(chunks), (total+99)/100)

	seen := map[string]bool{}
	for i, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), 100)
		assert.True(t, utf8.ValidString(c.Content))
		assert.NotEmpty(t, c.Content)
		assert.Equal(t, i, c.Position)
		assert.False(t, seen[c.ID], "duplicate chunk id")
		seen[c.ID] = true
	}
}

func TestSplitKeepingSeparator(t *testing.T) {
	assert.Equal(t, []string{"a", " b", " c"}, splitKeepingSeparator("a b c", " "))
	assert.Equal(t, []string{"\nb"}, splitKeepingSeparator("\nb", "\n"))
	assert.Equal(t, []string{"é", "a"}, splitKeepingSeparator("éa", ""))
	assert.Equal(t, "a b c", strings.Join(splitKeepingSeparator("a b c", " "), ""))
}

// mixedText builds deterministic prose with paragraph, line and word breaks.
func mixedText(n int) string {
	words := []string{"soil", "rainfall", "maize", "drought", "yield", "irrigation",
		"heat", "farmers", "adaptation", "wheat", "carbon", "season"}
	rng := rand.New(rand.NewSource(7))

	var b strings.Builder
	for b.Len() < n {
		b.WriteString(words[rng.Intn(len(words))])
		switch r := rng.Intn(20); {
		case r == 0:
			b.WriteString("\n\n")
		case r < 3:
			b.WriteString("\n")
		default:
			b.WriteString(" ")
		}
	}
	return b.String()
}

func TestSplit_ChunksReconstructText(t *testing.T) {
	for _, tc := range []struct{ size, overlap int }{
		{1000, 150},
		{200, 40},
		{80, 0},
	} {
		text := mixedText(2400)
		s, err := NewRecursiveSplitter(tc.size, tc.overlap)
		require.NoError(t, err)

		chunks, err := s.Split(text)
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)

		prevStart, covered := -1, 0
		for i, c := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), tc.size)

			// A chunk can only begin inside the previous chunk's overlap tail
			// or after it. The text is ASCII, so bytes and runes agree.
			from := max(prevStart+1, covered-tc.overlap)
			rel := strings.Index(text[from:], c.Content)
			require.GreaterOrEqual(t, rel, 0, "chunk %d not found in order", i)
			start := from + rel

			if start > covered {
				assert.Empty(t, strings.TrimSpace(text[covered:start]), "text lost before chunk %d", i)
			}
			covered = max(covered, start+len(c.Content))
			prevStart = start
		}
		assert.Empty(t, strings.TrimSpace(text[covered:]), "tail not covered")
	}
}
