package bootstrap

import (
	"time"

	"github.com/kbukum/edlflash/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	signals         bool
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{signals: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger. Without it the global logger is
// initialized from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration of the shutdown phase.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithoutSignals stops Run and RunTask from listening for SIGINT/SIGTERM;
// only the caller's context ends them.
func WithoutSignals() Option {
	return func(o *appOptions) {
		o.signals = false
	}
}
