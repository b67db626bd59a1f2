package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

// DefaultTopic is used when no topic has been configured.
const DefaultTopic = "Impact of Climate Change on Agriculture"

// DefaultSourceSet is the state of a fresh installation.
func DefaultSourceSet() models.SourceSet {
	return models.SourceSet{PDFs: []string{}, URLs: []string{}, Topic: DefaultTopic}
}

// SourceStore persists a SourceSet as indented JSON.
type SourceStore struct {
	path string
}

func NewSourceStore(path string) *SourceStore {
	return &SourceStore{path: path}
}

func (s *SourceStore) Path() string { return s.path }

// Load reads the source set. A missing file yields the default set and no
// error. An unreadable or malformed file also yields the default set, along
// with a ConfigIOError the caller should surface as a warning.
func (s *SourceStore) Load() (models.SourceSet, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSourceSet(), nil
	}
	if err != nil {
		return DefaultSourceSet(), core.Wrap(core.ConfigIOError, s.path, err)
	}

	var set models.SourceSet
	if err := json.Unmarshal(data, &set); err != nil {
		return DefaultSourceSet(), core.Wrap(core.ConfigIOError, s.path, err)
	}

	set = set.Clone()
	if strings.TrimSpace(set.Topic) == "" {
		set.Topic = DefaultTopic
	}
	return set, nil
}

// Save overwrites the file with set, 2-space indented, preserving list order.
func (s *SourceStore) Save(set models.SourceSet) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set.Clone()); err != nil {
		return core.Wrap(core.ConfigIOError, s.path, err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return core.Wrap(core.ConfigIOError, s.path, err)
	}
	return nil
}
