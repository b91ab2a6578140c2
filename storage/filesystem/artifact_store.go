package filesystem

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/revelaction/squadprep/dataset"
	"github.com/revelaction/squadprep/storage"
	"github.com/revelaction/squadprep/vocab"
)

// ArtifactStore keeps every split as three JSON files in one directory:
// data_<split>.json, shared_<split>.json and metadata_<split>.json.
type ArtifactStore struct {
	root string
}

var _ storage.ArtifactRepository = (*ArtifactStore)(nil)

// NewArtifactStore creates root if needed.
func NewArtifactStore(root string) (*ArtifactStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &ArtifactStore{root: root}, nil
}

func (s *ArtifactStore) path(kind, split string) string {
	return filepath.Join(s.root, fmt.Sprintf("%s_%s.json", kind, split))
}

func (s *ArtifactStore) Write(split string, a dataset.Artifact) error {
	files := []struct {
		kind string
		v    any
	}{
		{"data", &a.Data},
		{"shared", a.Shared},
		{"metadata", a.Metadata},
	}

	for _, f := range files {
		if err := writeJSON(s.path(f.kind, split), f.v); err != nil {
			return fmt.Errorf("%s_%s: %w", f.kind, split, err)
		}
	}
	return nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return err
	}
	return w.Flush()
}

func (s *ArtifactStore) Metadata(split string) (dataset.Metadata, error) {
	var m dataset.Metadata
	if err := s.readJSON(s.path("metadata", split), &m); err != nil {
		return dataset.Metadata{}, err
	}
	return m, nil
}

// Vocabularies decodes only wv and cv of the shared file.
func (s *ArtifactStore) Vocabularies(split string) (*vocab.Vocabulary, *vocab.Vocabulary, error) {
	var shared struct {
		WV *vocab.Vocabulary `json:"wv"`
		CV *vocab.Vocabulary `json:"cv"`
	}
	if err := s.readJSON(s.path("shared", split), &shared); err != nil {
		return nil, nil, err
	}
	if shared.WV == nil || shared.CV == nil {
		return nil, nil, fmt.Errorf("shared_%s: missing vocabulary", split)
	}
	return shared.WV, shared.CV, nil
}

func (s *ArtifactStore) readJSON(path string, v any) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(bufio.NewReader(f)).Decode(v); err != nil {
		return fmt.Errorf("JSON decoding error in %s: %w", path, err)
	}
	return nil
}
