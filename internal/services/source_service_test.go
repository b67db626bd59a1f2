package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Scholara/internal/config"
	"github.com/markdave123-py/Scholara/internal/core"
)

func newService(t *testing.T) (*SourceService, string) {
	t.Helper()
	dir := t.TempDir()
	store := config.NewSourceStore(filepath.Join(dir, "sources.json"))
	return NewSourceService(store, dir, "documents"), dir
}

func touch(t *testing.T, dir, rel string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("%PDF-1.4"), 0o644))
}

func TestSourceService_StartsWithDefaults(t *testing.T) {
	svc, _ := newService(t)
	set := svc.Snapshot()
	assert.Empty(t, set.PDFs)
	assert.Empty(t, set.URLs)
	assert.Equal(t, config.DefaultTopic, set.Topic)
}

func TestSourceService_AddPDF(t *testing.T) {
	svc, dir := newService(t)
	touch(t, dir, "documents/a.pdf")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder"), 0o755))

	require.NoError(t, svc.AddPDF("documents/a.pdf"))
	assert.ErrorIs(t, svc.AddPDF("documents/a.pdf"), ErrDuplicateSource)
	assert.ErrorIs(t, svc.AddPDF("documents/missing.pdf"), ErrInvalidSource)
	assert.ErrorIs(t, svc.AddPDF("folder"), ErrInvalidSource)
	assert.ErrorIs(t, svc.AddPDF("  "), ErrInvalidSource)

	assert.Equal(t, []string{"documents/a.pdf"}, svc.Snapshot().PDFs)

	// Persisted: a fresh service over the same file sees the change.
	again := NewSourceService(config.NewSourceStore(filepath.Join(dir, "sources.json")), dir, "documents")
	assert.Equal(t, []string{"documents/a.pdf"}, again.Snapshot().PDFs)
}

func TestSourceService_AddURL(t *testing.T) {
	svc, _ := newService(t)

	require.NoError(t, svc.AddURL("https://example.org/a"))
	require.NoError(t, svc.AddURL(" http://example.org/b "))
	assert.ErrorIs(t, svc.AddURL("https://example.org/a"), ErrDuplicateSource)

	for _, bad := range []string{"", "example.org", "ftp://example.org/x", "https://", "::nope"} {
		assert.ErrorIs(t, svc.AddURL(bad), ErrInvalidSource, bad)
	}
	assert.Equal(t, []string{"https://example.org/a", "http://example.org/b"}, svc.Snapshot().URLs)
}

func TestSourceService_RemoveAndClear(t *testing.T) {
	svc, dir := newService(t)
	touch(t, dir, "a.pdf")
	touch(t, dir, "b.pdf")
	require.NoError(t, svc.AddPDF("a.pdf"))
	require.NoError(t, svc.AddPDF("b.pdf"))
	require.NoError(t, svc.AddURL("https://example.org"))
	require.NoError(t, svc.SetTopic("Soil"))

	require.NoError(t, svc.RemovePDF("a.pdf"))
	assert.ErrorIs(t, svc.RemovePDF("a.pdf"), ErrSourceNotFound)
	assert.ErrorIs(t, svc.RemoveURL("https://nowhere.test"), ErrSourceNotFound)
	assert.Equal(t, []string{"b.pdf"}, svc.Snapshot().PDFs)

	require.NoError(t, svc.Clear())
	set := svc.Snapshot()
	assert.Empty(t, set.PDFs)
	assert.Empty(t, set.URLs)
	assert.Equal(t, "Soil", set.Topic)
}

func TestSourceService_SetTopic(t *testing.T) {
	svc, _ := newService(t)
	assert.ErrorIs(t, svc.SetTopic("   "), ErrEmptyTopic)
	require.NoError(t, svc.SetTopic("  Water Scarcity "))
	assert.Equal(t, "Water Scarcity", svc.Snapshot().Topic)
}

func TestSourceService_LoadSamples(t *testing.T) {
	svc, dir := newService(t)
	require.NoError(t, svc.SetTopic("Other"))
	require.NoError(t, svc.AddURL("https://example.org"))

	require.NoError(t, svc.LoadSamples())
	set := svc.Snapshot()
	assert.Empty(t, set.PDFs)
	assert.Equal(t, []string{SampleURL}, set.URLs)
	assert.Equal(t, config.DefaultTopic, set.Topic)

	touch(t, dir, "documents/sample.pdf")
	require.NoError(t, svc.LoadSamples())
	assert.Equal(t, []string{"documents/sample.pdf"}, svc.Snapshot().PDFs)
}

func TestSourceService_SaveUpload(t *testing.T) {
	svc, dir := newService(t)

	rel, err := svc.SaveUpload("../../my report.pdf", strings.NewReader("%PDF-1.4 data"))
	require.NoError(t, err)
	assert.Equal(t, "documents/my_report.pdf", rel)

	data, err := os.ReadFile(filepath.Join(dir, "documents", "my_report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 data", string(data))

	// Re-uploading replaces the file without duplicating the source.
	_, err = svc.SaveUpload("my report.pdf", strings.NewReader("v2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"documents/my_report.pdf"}, svc.Snapshot().PDFs)

	_, err = svc.SaveUpload("notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidSource)
	_, err = svc.SaveUpload("", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestSourceService_PersistFailureKeepsMemoryState(t *testing.T) {
	dir := t.TempDir()
	store := config.NewSourceStore(filepath.Join(dir, "missing-dir", "sources.json"))
	svc := NewSourceService(store, dir, "documents")

	err := svc.AddURL("https://example.org")
	assert.ErrorIs(t, err, core.ConfigIOError)
	assert.Equal(t, []string{"https://example.org"}, svc.Snapshot().URLs)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a_b.pdf", sanitizeFileName("dir/a b.pdf"))
	assert.Equal(t, "x.pdf", sanitizeFileName(`C:\Users\me\x.pdf`))
	assert.Empty(t, sanitizeFileName(".."))
	assert.Empty(t, sanitizeFileName(""))
}
