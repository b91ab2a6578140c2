package main

import (
	"fmt"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/squadprep/render"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Usage:   fmt.Sprintf("report format, one of %v", render.SupportedFormats()),
		Value:   "text",
		EnvVars: []string{"SQUADPREP_FORMAT"},
		Action: func(_ *cli.Context, v string) error {
			if !slices.Contains(render.SupportedFormats(), v) {
				return fmt.Errorf("unsupported format %q", v)
			}
			return nil
		},
	}
}

func noColorFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "no-color",
		Usage:   "disable colored output",
		EnvVars: []string{"NO_COLOR"},
	}
}

func targetFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "target",
		Aliases:  []string{"t"},
		Usage:    "output directory, or a SQLite file ending in .db",
		EnvVars:  []string{"SQUADPREP_TARGET"},
		Required: required,
	}
}
