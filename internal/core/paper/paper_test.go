package paper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

type fakeLLM struct {
	system, user string
	calls        int
	reply        string
	err          error
}

func (f *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.system, f.user = systemPrompt, userPrompt
	return f.reply, f.err
}

type fakeObjects struct {
	key, contentType string
	data             []byte
	err              error
}

func (f *fakeObjects) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.key, f.data, f.contentType = key, data, contentType
	if f.err != nil {
		return "", f.err
	}
	return "https://bucket.example/" + key, nil
}

func TestGenerator_BuildsPromptFromTopicAndText(t *testing.T) {
	llm := &fakeLLM{reply: "# Title\n\nAbstract..."}
	g := NewGenerator(llm, 0)

	p, err := g.Generate(context.Background(), "Soil Health", "cover crops improve soil structure")
	require.NoError(t, err)

	assert.Equal(t, 1, llm.calls)
	assert.Empty(t, llm.system)
	assert.Contains(t, llm.user, "Research Topic: Soil Health")
	assert.Contains(t, llm.user, "Source Materials:\ncover crops improve soil structure")
	assert.Contains(t, llm.user, "200-300 words")
	assert.Contains(t, llm.user, "3000-5000 words")

	assert.Equal(t, "Soil Health", p.Topic)
	assert.Equal(t, "# Title\n\nAbstract...", p.Content)
	assert.False(t, p.Truncated)
	assert.Zero(t, p.DroppedChars)
}

func TestGenerator_TruncatesLongInput(t *testing.T) {
	llm := &fakeLLM{reply: "paper"}
	g := NewGenerator(llm, DefaultMaxContextChars)

	text := strings.Repeat("é", 8000) + strings.Repeat("Ω", 500)
	p, err := g.Generate(context.Background(), "T", text)
	require.NoError(t, err)

	assert.True(t, p.Truncated)
	assert.Equal(t, 500, p.DroppedChars)
	assert.Contains(t, llm.user, strings.Repeat("é", 8000))
	assert.NotContains(t, llm.user, "Ω")
}

func TestGenerator_WrapsProviderFailure(t *testing.T) {
	cause := errors.New("401 unauthorized")
	llm := &fakeLLM{err: cause}

	_, err := NewGenerator(llm, 0).Generate(context.Background(), "T", "text")
	assert.ErrorIs(t, err, core.GenerationError)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, llm.calls)
}

func TestTruncateRunes(t *testing.T) {
	s, n := truncateRunes("abc", 5)
	assert.Equal(t, "abc", s)
	assert.Zero(t, n)

	s, n = truncateRunes("añbc", 2)
	assert.Equal(t, "añ", s)
	assert.Equal(t, 2, n)
}

func TestFileWriter_OverwritesLocalFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "research_paper.md")
	w := NewFileWriter(out, nil)

	local, remote, err := w.Write(context.Background(), "run-1", &models.Paper{Content: "first"})
	require.NoError(t, err)
	assert.Equal(t, out, local)
	assert.Empty(t, remote)

	_, _, err = w.Write(context.Background(), "run-2", &models.Paper{Content: "second"})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestFileWriter_Publishes(t *testing.T) {
	out := filepath.Join(t.TempDir(), "research_paper.md")
	obj := &fakeObjects{}
	w := NewFileWriter(out, obj)

	_, remote, err := w.Write(context.Background(), "run-9", &models.Paper{Content: "# Paper"})
	require.NoError(t, err)
	assert.Equal(t, "papers/run-9/research_paper.md", obj.key)
	assert.Equal(t, "# Paper", string(obj.data))
	assert.Equal(t, markdownContentType, obj.contentType)
	assert.Equal(t, "https://bucket.example/papers/run-9/research_paper.md", remote)
}

func TestFileWriter_Failures(t *testing.T) {
	dir := t.TempDir()

	// The target's parent is a regular file, so the write cannot succeed.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	_, _, err := NewFileWriter(filepath.Join(blocker, "paper.md"), nil).
		Write(context.Background(), "r", &models.Paper{Content: "x"})
	assert.ErrorIs(t, err, core.ArtifactError)

	obj := &fakeObjects{err: errors.New("access denied")}
	_, _, err = NewFileWriter(filepath.Join(dir, "paper.md"), obj).
		Write(context.Background(), "r", &models.Paper{Content: "x"})
	assert.ErrorIs(t, err, core.ArtifactError)
}

func TestFileWriter_FailedUploadKeepsPreviousPaper(t *testing.T) {
	out := filepath.Join(t.TempDir(), "research_paper.md")
	require.NoError(t, os.WriteFile(out, []byte("OLD PAPER"), 0o644))

	obj := &fakeObjects{err: errors.New("s3 down")}
	local, remote, err := NewFileWriter(out, obj).
		Write(context.Background(), "run", &models.Paper{Content: "NEW PAPER"})
	require.ErrorIs(t, err, core.ArtifactError)
	assert.Contains(t, err.Error(), "s3 down")
	assert.Empty(t, local)
	assert.Empty(t, remote)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "OLD PAPER", string(data))
}
