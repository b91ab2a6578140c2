package pipeline

import (
	"fmt"

	"github.com/rcrowley/go-metrics"

	"github.com/revelaction/squadprep/corpus"
	"github.com/revelaction/squadprep/dataset"
	"github.com/revelaction/squadprep/embedding"
	"github.com/revelaction/squadprep/split"
	"github.com/revelaction/squadprep/vocab"
)

// Config holds the thresholds of a run.
type Config struct {
	// MinWordCount is the least count a word needs for its own index.
	MinWordCount int

	// MinCharCount is the least count a character needs for its own index.
	MinCharCount int

	// TrainRatio is the share of the training rows kept for train; the
	// rest becomes dev.
	TrainRatio float64
}

// DefaultConfig returns the thresholds used for SQuAD.
func DefaultConfig() Config {
	return Config{
		MinWordCount: 100,
		MinCharCount: 500,
		TrainRatio:   0.9,
	}
}

// Validate fails on a ratio that can never split.
func (c Config) Validate() error {
	if !(c.TrainRatio > 0 && c.TrainRatio < 1) {
		return fmt.Errorf("%w: train ratio %v is outside (0,1)", split.ErrRatio, c.TrainRatio)
	}
	return nil
}

// Artifacts are the three indexed splits. Dev shares the tables of train.
type Artifacts struct {
	Train dataset.Artifact
	Dev   dataset.Artifact
	Test  dataset.Artifact

	TrainReport Report
	TestReport  Report
}

// Run extracts train and test, builds the vocabularies from train only,
// indexes both with them, splits train into train and dev, and joins lookup
// against the word vocabulary. lookup may be nil. Nothing is returned
// unless every step succeeds.
func Run(train, test *corpus.Corpus, lookup embedding.Lookup, c Config, opts ...Option) (*Artifacts, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)

	rawTrain, err := Extract(train, append(opts,
		WithName("train"),
		WithRegistry(metrics.NewPrefixedChildRegistry(cfg.registry, "train.")))...)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	rawTest, err := Extract(test, append(opts,
		WithName("test"),
		WithRegistry(metrics.NewPrefixedChildRegistry(cfg.registry, "test.")))...)
	if err != nil {
		return nil, fmt.Errorf("test: %w", err)
	}

	wv, err := vocab.Build(rawTrain.Words, c.MinWordCount)
	if err != nil {
		return nil, fmt.Errorf("word vocabulary: %w", err)
	}
	cv, err := vocab.Build(rawTrain.Chars, c.MinCharCount)
	if err != nil {
		return nil, fmt.Errorf("char vocabulary: %w", err)
	}
	cfg.logger.Info("vocabulary", "words", wv.Len(), "chars", cv.Len())

	trainShared := dataset.IndexShared(rawTrain.Shared, wv, cv)
	testShared := dataset.IndexShared(rawTest.Shared, wv, cv)
	trainData := dataset.Index(rawTrain.Data, wv, cv)
	testData := dataset.Index(rawTest.Data, wv, cv)

	trainMeta := rawTrain.Metadata
	trainMeta.WordVocabSize = wv.Len()
	trainMeta.CharVocabSize = cv.Len()

	// test lives in the index space of train
	testMeta := rawTest.Metadata
	testMeta.WordVocabSize = trainMeta.WordVocabSize
	testMeta.CharVocabSize = trainMeta.CharVocabSize

	trainCols, devCols, err := split.Split(trainData.Columns(), c.TrainRatio)
	if err != nil {
		return nil, err
	}
	trData, err := dataset.FromColumns[int](trainCols)
	if err != nil {
		return nil, err
	}
	devData, err := dataset.FromColumns[int](devCols)
	if err != nil {
		return nil, err
	}

	if lookup != nil {
		idx2vec, err := embedding.IndexVectors(wv, lookup)
		if err != nil {
			return nil, fmt.Errorf("embedding: %w", err)
		}
		trainShared.Idx2Vec = idx2vec
		cfg.logger.Info("embedding", "with_vector", len(idx2vec), "words", wv.Len())
	}

	return &Artifacts{
		Train:       dataset.Artifact{Data: trData, Shared: trainShared, Metadata: trainMeta},
		Dev:         dataset.Artifact{Data: devData, Shared: trainShared, Metadata: trainMeta},
		Test:        dataset.Artifact{Data: testData, Shared: testShared, Metadata: testMeta},
		TrainReport: rawTrain.Report,
		TestReport:  rawTest.Report,
	}, nil
}
