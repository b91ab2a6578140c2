package main

import (
	"github.com/urfave/cli/v2"

	"github.com/revelaction/squadprep/explore"
	"github.com/revelaction/squadprep/storage"
)

type ExploreOptions struct {
	Target string
	Split  string
}

func exploreCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "explore",
		Usage: "look up words, indices and chars in the vocabularies of a split",
		Flags: []cli.Flag{
			targetFlag(true),
			&cli.StringFlag{
				Name:  "split",
				Value: storage.Train,
				Usage: "one of train, dev, test",
			},
		},
		Action: func(c *cli.Context) error {
			opts := ExploreOptions{
				Target: c.String("target"),
				Split:  c.String("split"),
			}
			return exploreCommand(opts, ui)
		},
	}
}

func exploreCommand(opts ExploreOptions, ui UI) error {
	var p Pool
	defer p.Close()

	repo, err := NewArtifactReader(&p, opts.Target)
	if err != nil {
		return err
	}

	wv, cv, err := repo.Vocabularies(opts.Split)
	if err != nil {
		return err
	}
	m, err := repo.Metadata(opts.Split)
	if err != nil {
		return err
	}

	return explore.NewHandler(opts.Split, wv, cv, m, ui.Out).Run()
}
