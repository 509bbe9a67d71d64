package bootstrap

import (
	"time"

	"github.com/trae-op/electron-modular/di"
	"github.com/trae-op/electron-modular/ipc"
	"github.com/trae-op/electron-modular/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	container       *di.Container
	bus             ipc.Bus
	gracefulTimeout *time.Duration
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithContainer sets a custom DI container for the application.
func WithContainer(c *di.Container) Option {
	return func(o *appOptions) { o.container = c }
}

// WithBus sets the IPC bus the application attaches handlers and lazy
// triggers to. Defaults to an in-process memory bus.
func WithBus(b ipc.Bus) Option {
	return func(o *appOptions) { o.bus = b }
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = &d }
}
