package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	if err := newApp(ui).Run(os.Args); err != nil {
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "squadprep: %v\n", err)
}

func newApp(ui UI) *cli.App {
	return &cli.App{
		Name:      "squadprep",
		Usage:     "prepare augmented SQuAD corpora for reading comprehension models",
		Writer:    ui.Out,
		ErrWriter: ui.Err,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log at debug level",
				EnvVars: []string{"SQUADPREP_VERBOSE"},
			},
		},
		Commands: []*cli.Command{
			preproCmd(ui),
			statCmd(ui),
			exploreCmd(ui),
			versionCmd(ui),
		},
		// errors are printed once, by main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// newLogger writes text logs to the error stream.
func newLogger(c *cli.Context, ui UI) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(ui.Err, &slog.HandlerOptions{Level: level}))
}
