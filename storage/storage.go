package storage

import (
	"errors"

	"github.com/revelaction/squadprep/corpus"
	"github.com/revelaction/squadprep/dataset"
	"github.com/revelaction/squadprep/vocab"
)

// ErrNotFound is returned when a split has not been written.
var ErrNotFound = errors.New("storage: split not found")

// Split names as written by prepro.
const (
	Train = "train"
	Dev   = "dev"
	Test  = "test"
)

// Splits returns the split names in write order.
func Splits() []string {
	return []string{Train, Dev, Test}
}

// CorpusReader reads augmented SQuAD files.
type CorpusReader interface {
	// ReadCorpus reads the named corpus file
	ReadCorpus(name string) (*corpus.Corpus, error)
}

// ArtifactWriter defines write operations for the prepared splits
type ArtifactWriter interface {
	// Write persists data, shared tables and metadata of one split,
	// replacing what was there.
	Write(split string, a dataset.Artifact) error
}

// ArtifactReader defines read operations for the prepared splits
type ArtifactReader interface {
	// Metadata returns the dimension bounds of a split
	Metadata(split string) (dataset.Metadata, error)

	// Vocabularies returns the word and char vocabularies a split was
	// indexed with.
	Vocabularies(split string) (wv, cv *vocab.Vocabulary, err error)
}

// ArtifactRepository combines read and write operations
type ArtifactRepository interface {
	ArtifactReader
	ArtifactWriter
}
