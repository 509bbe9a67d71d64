package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trae-op/electron-modular/di"
	apperrors "github.com/trae-op/electron-modular/errors"
	"github.com/trae-op/electron-modular/ipc"
	"github.com/trae-op/electron-modular/lazy"
	"github.com/trae-op/electron-modular/logger"
	"github.com/trae-op/electron-modular/module"
)

// App drives the module system: it owns the container, the IPC bus, and the
// lazy gate, and processes top-level modules strictly in declaration order.
// Each eager module's full pipeline, including instantiation, completes
// before the next module starts, so constructor side effects are
// deterministic.
type App struct {
	Container *di.Container
	Registrar *module.Registrar
	Gate      *lazy.Gate
	Bus       ipc.Bus
	Logger    *logger.Logger

	gracefulTimeout time.Duration
	onStart         []Hook
	onReady         []Hook
	onStop          []Hook
}

// NewApp creates an application with a fresh container, memory bus, and gate
// unless options supply replacements.
func NewApp(opts ...Option) *App {
	o := resolveOptions(opts)

	app := &App{
		Logger:          o.logger,
		Container:       o.container,
		Bus:             o.bus,
		gracefulTimeout: 15 * time.Second,
	}
	if app.Logger == nil {
		app.Logger = logger.GetGlobalLogger().WithComponent("bootstrap")
	}
	if app.Container == nil {
		app.Container = di.NewContainer(di.WithLogger(app.Logger))
	}
	if app.Bus == nil {
		app.Bus = ipc.NewMemoryBus()
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	app.Registrar = module.NewRegistrar(app.Container, app.Logger)
	app.Gate = lazy.NewGate(app.Container, app.Registrar, app.Logger)
	return app
}

// Bootstrap processes the top-level modules in the caller-supplied order.
// Lazy modules are routed to the gate; eager modules run the registration
// pipeline, are instantiated with resolved constructor dependencies, and get
// their IPC handlers attached to the bus. Structural and registration errors
// propagate and halt startup.
func (a *App) Bootstrap(ctx context.Context, modules ...*module.Module) error {
	if err := runHooks(ctx, a.onStart); err != nil {
		return err
	}

	for _, m := range modules {
		if m.Descriptor() == nil {
			return apperrors.ModuleDescriptorMissing(m.String())
		}
		if m.IsLazy() {
			if err := a.Gate.Register(m, a.Bus); err != nil {
				return err
			}
			continue
		}
		if err := a.startModule(ctx, m); err != nil {
			return err
		}
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return err
	}

	a.Logger.Info("bootstrap complete", logger.Fields("modules", len(modules)))
	return nil
}

// startModule runs one eager module's pipeline end to end.
func (a *App) startModule(ctx context.Context, m *module.Module) error {
	if err := a.Registrar.Init(ctx, m); err != nil {
		return err
	}

	instance, err := a.Container.Instantiate(ctx, m, m.Constructor())
	if err != nil {
		return err
	}
	a.Container.RegisterInstance(m, instance)

	// Warm the module's own-provider path.
	if _, err := a.Container.Resolve(ctx, m, m); err != nil {
		return err
	}

	desc := m.Descriptor()
	if len(desc.Windows) > 0 && len(desc.IPCHandlers) == 0 {
		a.Logger.Warn("module declares windows but no IPC handlers to manage them", logger.Fields(
			logger.FieldModule, m.String(),
			"windows", len(desc.Windows),
		))
	}

	if err := a.attachHandlers(ctx, m, desc); err != nil {
		return err
	}

	a.Logger.Info("module started", logger.Fields(logger.FieldModule, m.String()))
	return nil
}

// attachHandlers resolves each declared IPC handler and registers its
// channels on the bus.
func (a *App) attachHandlers(ctx context.Context, m *module.Module, desc *module.Descriptor) error {
	for _, tok := range desc.HandlerTokens() {
		resolved, err := a.Container.Resolve(ctx, m, tok)
		if err != nil {
			return err
		}
		handler, ok := resolved.(ipc.Handler)
		if !ok {
			return apperrors.InvalidProvider(m.String(), resolved).
				WithDetail("reason", "IPC handler does not implement ipc.Handler")
		}
		if err := handler.Register(a.Bus); err != nil {
			return err
		}
	}
	return nil
}

// Run bootstraps the modules and blocks until an interrupt or termination
// signal, then shuts down gracefully.
func (a *App) Run(ctx context.Context, modules ...*module.Module) error {
	if err := a.Bootstrap(ctx, modules...); err != nil {
		return err
	}

	a.Logger.Info("application ready")
	a.waitForSignal(ctx)
	return a.Shutdown()
}

func (a *App) waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("context canceled")
	}
}

// Shutdown runs stop hooks and releases the bus and container.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var firstErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("stop hook failed", logger.ErrorFields("shutdown", err))
		firstErr = err
	}
	if err := a.Bus.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.Container.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	a.Logger.Info("application shutdown complete")
	return firstErr
}
