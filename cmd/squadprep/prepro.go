package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gosuri/uiprogress"
	"github.com/urfave/cli/v2"

	"github.com/revelaction/squadprep/corpus"
	"github.com/revelaction/squadprep/embedding"
	"github.com/revelaction/squadprep/pipeline"
	"github.com/revelaction/squadprep/render"
	"github.com/revelaction/squadprep/storage"
	"github.com/revelaction/squadprep/storage/filesystem"
)

type PreproOptions struct {
	SourceDir string
	Target    string
	Config    pipeline.Config
	Debug     bool

	GloveDir      string
	GloveCorpus   string
	GloveWordSize int
	GloveCache    string

	Format  string
	NoColor bool
}

func preproCmd(ui UI) *cli.Command {
	def := pipeline.DefaultConfig()

	return &cli.Command{
		Name:  "prepro",
		Usage: "index train and dev corpora into train, dev and test artifacts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source-dir",
				Aliases:  []string{"s"},
				Usage:    "directory with " + filesystem.TrainFile + " and " + filesystem.TestFile,
				EnvVars:  []string{"SQUADPREP_SOURCE_DIR"},
				Required: true,
			},
			targetFlag(true),
			&cli.IntFlag{
				Name:    "min-word-count",
				Usage:   "least train count for a word to get its own index",
				Value:   def.MinWordCount,
				EnvVars: []string{"SQUADPREP_MIN_WORD_COUNT"},
			},
			&cli.IntFlag{
				Name:    "min-char-count",
				Usage:   "least train count for a char to get its own index",
				Value:   def.MinCharCount,
				EnvVars: []string{"SQUADPREP_MIN_CHAR_COUNT"},
			},
			&cli.Float64Flag{
				Name:    "train-ratio",
				Usage:   "share of train rows kept for train, the rest is dev",
				Value:   def.TrainRatio,
				EnvVars: []string{"SQUADPREP_TRAIN_RATIO"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "stop after the first article of each corpus",
			},
			&cli.StringFlag{
				Name:    "glove-dir",
				Usage:   "directory with the GloVe text files; no vectors when empty",
				EnvVars: []string{"SQUADPREP_GLOVE_DIR"},
			},
			&cli.StringFlag{
				Name:    "glove-corpus",
				Value:   "6B",
				EnvVars: []string{"SQUADPREP_GLOVE_CORPUS"},
			},
			&cli.IntFlag{
				Name:    "glove-word-size",
				Value:   100,
				EnvVars: []string{"SQUADPREP_GLOVE_WORD_SIZE"},
			},
			&cli.StringFlag{
				Name:    "glove-cache",
				Usage:   "bolt file the GloVe vectors are imported into once and read from after",
				EnvVars: []string{"SQUADPREP_GLOVE_CACHE"},
			},
			formatFlag(),
			noColorFlag(),
		},
		Action: func(c *cli.Context) error {
			opts := PreproOptions{
				SourceDir: c.String("source-dir"),
				Target:    c.String("target"),
				Config: pipeline.Config{
					MinWordCount: c.Int("min-word-count"),
					MinCharCount: c.Int("min-char-count"),
					TrainRatio:   c.Float64("train-ratio"),
				},
				Debug:         c.Bool("debug"),
				GloveDir:      c.String("glove-dir"),
				GloveCorpus:   c.String("glove-corpus"),
				GloveWordSize: c.Int("glove-word-size"),
				GloveCache:    c.String("glove-cache"),
				Format:        c.String("format"),
				NoColor:       c.Bool("no-color"),
			}
			return preproCommand(opts, newLogger(c, ui), ui)
		},
	}
}

func preproCommand(opts PreproOptions, logger *slog.Logger, ui UI) error {
	if err := opts.Config.Validate(); err != nil {
		return err
	}

	src := filesystem.NewCorpusStore(opts.SourceDir)
	train, err := src.ReadCorpus(filesystem.TrainFile)
	if err != nil {
		return err
	}
	test, err := src.ReadCorpus(filesystem.TestFile)
	if err != nil {
		return err
	}

	lookup, closeLookup, err := openLookup(opts, train, logger)
	if err != nil {
		return err
	}
	defer closeLookup()

	progress := uiprogress.New()
	progress.SetOut(ui.Err)
	progress.Start()
	artifacts, err := pipeline.Run(train, test, lookup, opts.Config,
		pipeline.WithLogger(logger),
		pipeline.WithDebug(opts.Debug),
		pipeline.WithProgress(progressBars(progress)))
	progress.Stop()
	if err != nil {
		return err
	}

	var p Pool
	defer p.Close()
	repo, err := NewArtifactRepository(&p, opts.Target)
	if err != nil {
		return err
	}

	for _, split := range storage.Splits() {
		a := artifacts.Train
		switch split {
		case storage.Dev:
			a = artifacts.Dev
		case storage.Test:
			a = artifacts.Test
		}

		if err := repo.Write(split, a); err != nil {
			return fmt.Errorf("failed to write %s: %w", split, err)
		}
		logger.Info("written", "split", split, "rows", a.Data.Len(), "target", opts.Target)
	}

	r, err := render.New(opts.Format, ui.Out, !opts.NoColor)
	if err != nil {
		return err
	}
	r.Render([]pipeline.Report{artifacts.TrainReport, artifacts.TestReport})

	return nil
}

// progressBars adds one bar per split the first time it reports.
func progressBars(p *uiprogress.Progress) func(split string, current, total int) {
	bars := map[string]*uiprogress.Bar{}

	return func(split string, current, total int) {
		bar, ok := bars[split]
		if !ok {
			bar = p.AddBar(max(total, 1))
			bar.AppendCompleted()
			bar.PrependElapsed()
			bar.PrependFunc(func(*uiprogress.Bar) string {
				return fmt.Sprintf("%-5s", split)
			})
			bars[split] = bar
		}
		_ = bar.Set(current)
	}
}

// openLookup returns the GloVe vectors, or nil without --glove-dir. With a
// cache the text file is imported once into bolt; without one only the words
// of train are kept in memory.
func openLookup(opts PreproOptions, train *corpus.Corpus, logger *slog.Logger) (embedding.Lookup, func() error, error) {
	noop := func() error { return nil }
	if opts.GloveDir == "" {
		return nil, noop, nil
	}

	path := embedding.Path(opts.GloveDir, opts.GloveCorpus, opts.GloveWordSize)

	if opts.GloveCache != "" {
		store, err := embedding.OpenBoltStore(opts.GloveCache)
		if err != nil {
			return nil, noop, err
		}

		n, err := store.Len()
		if err != nil {
			store.Close()
			return nil, noop, err
		}
		if n > 0 {
			logger.Debug("glove cache", "path", opts.GloveCache, "vectors", n)
			return store, store.Close, nil
		}

		f, err := os.Open(path)
		if err != nil {
			store.Close()
			return nil, noop, err
		}
		defer f.Close()

		n, err = store.Import(f)
		if err != nil {
			store.Close()
			return nil, noop, fmt.Errorf("%s: %w", path, err)
		}
		logger.Info("glove imported", "path", path, "cache", opts.GloveCache, "vectors", n)
		return store, store.Close, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, noop, err
	}
	defer f.Close()

	words := train.WordSet()
	m, err := embedding.Load(f, func(w string) bool { return words[w] })
	if err != nil {
		return nil, noop, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("glove loaded", "path", path, "vectors", len(m))
	return m, noop, nil
}
