package core

import (
	"context"

	"github.com/markdave123-py/Scholara/internal/models"
)

// ExtractedText is the outcome of processing one source. Err is non-nil
// exactly when Text is empty.
type ExtractedText struct {
	Source models.Source
	Text   string
	Err    error
}

// OK reports whether the extraction produced usable text.
func (e ExtractedText) OK() bool {
	return e.Err == nil && e.Text != ""
}

// DocumentExtractor turns a source reference into plain text.
type DocumentExtractor interface {
	ExtractFromPDF(ctx context.Context, path string) (string, error)
	ExtractFromURL(ctx context.Context, url string) (string, error)
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
}
