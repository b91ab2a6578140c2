package pipeline

import (
	"log/slog"

	"github.com/rcrowley/go-metrics"
)

// Option configures Extract and Run.
type Option func(*config)

type config struct {
	name     string
	logger   *slog.Logger
	registry metrics.Registry
	progress func(split string, current, total int)
	debug    bool
}

func defaultConfig() config {
	return config{
		name:     "train",
		logger:   slog.Default(),
		progress: func(string, int, int) {},
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = metrics.NewRegistry()
	}
	return cfg
}

// WithName names the split in logs, progress and reports (default: train).
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRegistry sets the registry diagnostics are recorded in (default: a
// fresh registry per call). Counters in a shared registry accumulate across
// calls; Report only counts the current one.
func WithRegistry(r metrics.Registry) Option {
	return func(c *config) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithProgress sets a callback invoked once per paragraph.
func WithProgress(f func(split string, current, total int)) Option {
	return func(c *config) {
		if f != nil {
			c.progress = f
		}
	}
}

// WithDebug stops extraction after the first article.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.debug = debug
	}
}
