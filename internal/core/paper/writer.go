package paper

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

const markdownContentType = "text/markdown; charset=utf-8"

// FileWriter writes the paper as markdown to a fixed path, replacing any
// previous file, and optionally publishes a copy to object storage.
type FileWriter struct {
	path string
	obj  core.ObjectClient
}

// NewFileWriter returns a writer for outputPath. obj may be nil.
func NewFileWriter(outputPath string, obj core.ObjectClient) *FileWriter {
	return &FileWriter{path: outputPath, obj: obj}
}

func (w *FileWriter) Path() string { return w.path }

// Write publishes the paper first, when an object store is configured, and
// only then replaces the local file, so a failed write leaves the previous
// paper untouched.
func (w *FileWriter) Write(ctx context.Context, runID string, p *models.Paper) (string, string, error) {
	if p == nil {
		return "", "", core.Errorf(core.ArtifactError, w.path, "nil paper")
	}

	var url string
	if w.obj != nil {
		key := path.Join("papers", runID, filepath.Base(w.path))
		u, err := w.obj.UploadFile(ctx, key, []byte(p.Content), markdownContentType)
		if err != nil {
			return "", "", core.Wrap(core.ArtifactError, key, fmt.Errorf("upload: %w", err))
		}
		url = u
		log.Printf("Writer: paper published to %s", url)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", "", core.Wrap(core.ArtifactError, w.path, err)
		}
	}
	if err := os.WriteFile(w.path, []byte(p.Content), 0o644); err != nil {
		return "", "", core.Wrap(core.ArtifactError, w.path, err)
	}
	log.Printf("Writer: paper saved to %s", w.path)
	return w.path, url, nil
}
