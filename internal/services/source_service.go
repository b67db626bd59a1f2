package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/markdave123-py/Scholara/internal/config"
	"github.com/markdave123-py/Scholara/internal/models"
)

var (
	ErrDuplicateSource = errors.New("source already added")
	ErrInvalidSource   = errors.New("invalid source")
	ErrSourceNotFound  = errors.New("source not found")
	ErrEmptyTopic      = errors.New("topic must not be empty")
)

// SampleURL is the web source added by LoadSamples.
const SampleURL = "https://www.un.org/en/climatechange"

// SourceService owns the in-memory source set and persists it after every
// change. The in-memory set stays authoritative when a write fails.
type SourceService struct {
	mu        sync.Mutex
	store     *config.SourceStore
	set       models.SourceSet
	workDir   string
	uploadDir string
}

// NewSourceService loads the persisted set. A malformed file is logged and
// replaced by the default set.
func NewSourceService(store *config.SourceStore, workDir, uploadDir string) *SourceService {
	set, err := store.Load()
	if err != nil {
		log.Printf("SourceService: WARN using default sources: %v", err)
	}
	return &SourceService{store: store, set: set, workDir: workDir, uploadDir: uploadDir}
}

// Snapshot returns a copy of the current set.
func (s *SourceService) Snapshot() models.SourceSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// AddPDF adds a PDF path. The file must exist relative to the working directory.
func (s *SourceService) AddPDF(p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidSource)
	}
	info, err := os.Stat(s.resolve(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", ErrInvalidSource, p)
		}
		return fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidSource, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.set.PDFs, p) {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, p)
	}
	s.set.PDFs = append(s.set.PDFs, p)
	return s.persist()
}

// AddURL adds an http(s) URL.
func (s *SourceService) AddURL(raw string) error {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidSource, raw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.set.URLs, raw) {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, raw)
	}
	s.set.URLs = append(s.set.URLs, raw)
	return s.persist()
}

func (s *SourceService) RemovePDF(p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.set.PDFs, strings.TrimSpace(p))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, p)
	}
	s.set.PDFs = slices.Delete(s.set.PDFs, i, i+1)
	return s.persist()
}

func (s *SourceService) RemoveURL(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.set.URLs, strings.TrimSpace(raw))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, raw)
	}
	s.set.URLs = slices.Delete(s.set.URLs, i, i+1)
	return s.persist()
}

// Clear drops every source but keeps the topic.
func (s *SourceService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set.PDFs = []string{}
	s.set.URLs = []string{}
	return s.persist()
}

func (s *SourceService) SetTopic(topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set.Topic = topic
	return s.persist()
}

// LoadSamples replaces the set with the bundled sample sources.
func (s *SourceService) LoadSamples() error {
	sample := path.Join(filepath.ToSlash(s.uploadDir), "sample.pdf")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = config.DefaultSourceSet()
	if _, err := os.Stat(s.resolve(sample)); err == nil {
		s.set.PDFs = append(s.set.PDFs, sample)
	}
	s.set.URLs = append(s.set.URLs, SampleURL)
	return s.persist()
}

// SaveUpload stores an uploaded PDF under the upload directory and adds it
// as a source. It returns the stored path relative to the working directory.
func (s *SourceService) SaveUpload(name string, r io.Reader) (string, error) {
	base := sanitizeFileName(name)
	if base == "" || !strings.EqualFold(filepath.Ext(base), ".pdf") {
		return "", fmt.Errorf("%w: %q is not a PDF file name", ErrInvalidSource, name)
	}

	dir := s.resolve(s.uploadDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, base))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	log.Printf("SourceService: stored upload %s", base)

	rel := path.Join(filepath.ToSlash(s.uploadDir), base)

	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.set.PDFs, rel) {
		return rel, nil
	}
	s.set.PDFs = append(s.set.PDFs, rel)
	return rel, s.persist()
}

// persist writes the set; callers hold mu.
func (s *SourceService) persist() error {
	if err := s.store.Save(s.set); err != nil {
		log.Printf("SourceService: WARN could not save sources: %v", err)
		return err
	}
	return nil
}

func (s *SourceService) resolve(p string) string {
	if filepath.IsAbs(p) || s.workDir == "" {
		return p
	}
	return filepath.Join(s.workDir, p)
}

// sanitizeFileName keeps only the base name, with spaces as underscores.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return strings.ReplaceAll(name, " ", "_")
}
