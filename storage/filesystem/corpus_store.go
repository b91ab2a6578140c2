package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/revelaction/squadprep/corpus"
	"github.com/revelaction/squadprep/storage"
)

// Corpus file names inside a source directory.
const (
	TrainFile = "train-v1.0-aug.json"
	TestFile  = "dev-v1.0-aug.json"
)

type CorpusStore struct {
	dir string
}

var _ storage.CorpusReader = (*CorpusStore)(nil)

func NewCorpusStore(dir string) *CorpusStore {
	return &CorpusStore{dir: dir}
}

func (s *CorpusStore) ReadCorpus(name string) (*corpus.Corpus, error) {
	return ReadCorpus(filepath.Join(s.dir, name))
}

// ReadCorpus reads an augmented SQuAD JSON file from the given path.
func ReadCorpus(path string) (*corpus.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}
	defer f.Close()

	var c corpus.Corpus
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("JSON decoding error in %s: %w", path, err)
	}

	return &c, nil
}
