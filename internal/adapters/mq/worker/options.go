package worker

import (
	"github.com/okian/vibe/pkg/logger"
)

// Option applies a configuration option to an InMemoryWorker or Pool.
type Option func(*config)

type config struct {
	name     string
	logger   logger.Logger
	observer Observer
}

func newConfig(opts []Option) config {
	c := config{
		name:     "worker",
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	// Only reach for the global logger when none was given; it panics
	// before logger.Init.
	if c.logger == nil {
		c.logger = logger.Get().Named("worker")
	}
	return c
}

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a job lifecycle observer.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observer = o
		}
	}
}
