package ingestion_engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"code.sajari.com/docconv"
	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/markdave123-py/Scholara/internal/core"
)

const (
	// DefaultFetchTimeout bounds a single URL fetch, including the body read.
	DefaultFetchTimeout = 30 * time.Second

	// browserUserAgent is sent with every fetch; some sites refuse Go's default agent.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBodyBytes caps a fetched response; larger bodies are rejected.
	DefaultMaxBodyBytes = 64 << 20
)

var _ core.DocumentExtractor = (*SourceExtractor)(nil)

// SourceExtractor implements core.DocumentExtractor for local PDF files and
// web resources.
//
// workDir:        base directory relative PDF paths are resolved against.
// client:         HTTP client used for URL sources.
// timeout:        per-fetch deadline.
// maxBody:        largest response body accepted, in bytes.
// useReadability: passed to docconv for payloads that are neither HTML, PDF nor text.
type SourceExtractor struct {
	workDir        string
	client         *http.Client
	timeout        time.Duration
	maxBody        int64
	useReadability bool
}

// NewSourceExtractor builds an extractor rooted at workDir. A zero timeout
// falls back to DefaultFetchTimeout.
func NewSourceExtractor(workDir string, timeout time.Duration) *SourceExtractor {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &SourceExtractor{
		workDir: workDir,
		client:  &http.Client{},
		timeout: timeout,
		maxBody: DefaultMaxBodyBytes,
	}
}

// WithHTTPClient swaps the HTTP client, mostly for tests and proxies.
func (e *SourceExtractor) WithHTTPClient(c *http.Client) *SourceExtractor {
	if c != nil {
		e.client = c
	}
	return e
}

// WithMaxBodyBytes changes the response size limit. Non-positive values are ignored.
func (e *SourceExtractor) WithMaxBodyBytes(n int64) *SourceExtractor {
	if n > 0 {
		e.maxBody = n
	}
	return e
}

// ExtractFromPDF reads every page of the PDF at path and joins the pages
// that carry text with a newline.
func (e *SourceExtractor) ExtractFromPDF(ctx context.Context, path string) (string, error) {
	full := e.resolve(path)

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", core.Wrap(core.NotFound, path, err)
		}
		return "", core.Wrap(core.ExtractionError, path, err)
	}
	if info.IsDir() {
		return "", core.Errorf(core.ExtractionError, path, "path is a directory")
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", core.Wrap(core.ExtractionError, path, err)
	}
	return pdfText(ctx, path, data)
}

// ExtractFromURL fetches url and returns its readable text.
func (e *SourceExtractor) ExtractFromURL(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", core.Wrap(core.NetworkError, url, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", core.Wrap(core.NetworkError, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &core.Error{Kind: core.HTTPError, Source: url, Status: resp.StatusCode}
	}

	// One byte past the limit tells a body that fits from one that was cut.
	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody+1))
	if err != nil {
		return "", core.Wrap(core.NetworkError, url, err)
	}
	if int64(len(body)) > e.maxBody {
		log.Printf("Extractor: WARN response from %s exceeds %d bytes, skipping", url, e.maxBody)
		return "", core.Errorf(core.ExtractionError, url, "response body exceeds %d bytes", e.maxBody)
	}

	mediaType := mediaTypeOf(resp.Header.Get("Content-Type"), body)
	text, err := e.convert(ctx, url, mediaType, body)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &core.Error{Kind: core.NoTextExtracted, Source: url}
	}
	return text, nil
}

func (e *SourceExtractor) convert(ctx context.Context, url, mediaType string, body []byte) (string, error) {
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return htmlText(url, body)
	case mediaType == "application/pdf":
		return pdfText(ctx, url, body)
	case strings.HasPrefix(mediaType, "text/"):
		return collapseWhitespace(string(body)), nil
	}

	res, err := docconv.Convert(bytes.NewReader(body), mediaType, e.useReadability)
	if err != nil {
		log.Printf("Extractor: docconv failed for %s (%s): %v", url, mediaType, err)
		return "", core.Wrap(core.ExtractionError, url, err)
	}
	return collapseWhitespace(res.Body), nil
}

func (e *SourceExtractor) resolve(path string) string {
	if filepath.IsAbs(path) || e.workDir == "" {
		return path
	}
	return filepath.Join(e.workDir, path)
}

// pdfText walks the pages of an in-memory PDF. The parser panics on some
// malformed inputs, so panics are turned into ExtractionError.
func pdfText(ctx context.Context, source string, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = core.Errorf(core.ExtractionError, source, "pdf parser: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", core.Wrap(core.ExtractionError, source, err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", core.Wrap(core.ExtractionError, source, err)
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			return "", core.Wrap(core.ExtractionError, source, fmt.Errorf("page %d: %w", i, err))
		}
		if strings.TrimSpace(t) != "" {
			pages = append(pages, t)
		}
	}

	if len(pages) == 0 {
		return "", &core.Error{Kind: core.NoTextExtracted, Source: source}
	}
	return strings.Join(pages, "\n"), nil
}

// htmlText drops script and style elements and flattens the rest.
func htmlText(source string, body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", core.Wrap(core.ExtractionError, source, err)
	}
	doc.Find("script, style, noscript").Remove()
	return collapseWhitespace(doc.Text()), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// mediaTypeOf prefers the declared Content-Type and sniffs the body when the
// header is missing or generic.
func mediaTypeOf(header string, body []byte) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
			return strings.ToLower(mt)
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(body))
	return mt
}
