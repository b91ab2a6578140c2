package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Set with -ldflags at build time.
var (
	BuildTag    = "dev"
	BuildCommit = "none"
)

func versionCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the version",
		Action: func(*cli.Context) error {
			return versionCommand(ui)
		},
	}
}

func versionCommand(ui UI) error {
	_, err := fmt.Fprintf(ui.Out, "squadprep version %s (commit: %s)\n", BuildTag, BuildCommit)
	return err
}
