package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/squadprep/pipeline"
	"github.com/revelaction/squadprep/render"
	"github.com/revelaction/squadprep/storage/filesystem"
)

type StatOptions struct {
	Path         string
	Format       string
	Distribution bool
	NoColor      bool
}

func statCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "show token statistics and dimension bounds of a corpus file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			formatFlag(),
			noColorFlag(),
			&cli.BoolFlag{
				Name:  "distribution",
				Usage: "show the sentence length distribution",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("stat needs one FILE argument, got %d", c.NArg())
			}
			opts := StatOptions{
				Path:         c.Args().First(),
				Format:       c.String("format"),
				Distribution: c.Bool("distribution"),
				NoColor:      c.Bool("no-color"),
			}
			return statCommand(opts, newLogger(c, ui), ui)
		},
	}
}

func statCommand(opts StatOptions, logger *slog.Logger, ui UI) error {
	c, err := filesystem.ReadCorpus(opts.Path)
	if err != nil {
		return err
	}

	raw, err := pipeline.Extract(c,
		pipeline.WithName(filepath.Base(opts.Path)),
		pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	r, err := render.New(opts.Format, ui.Out, !opts.NoColor)
	if err != nil {
		return err
	}
	if tr, ok := r.(*render.TextRenderer); ok {
		tr.Distribution = opts.Distribution
	}

	r.Render([]pipeline.Report{raw.Report})
	return nil
}
