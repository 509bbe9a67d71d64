// Package lazy implements the activation gate for trigger-deferred modules.
// A lazy module's registration and instantiation run only when its trigger
// channel is first invoked; concurrent invocations share one activation, a
// successful activation is terminal, and a failed one resets so the next
// invocation retries from scratch.
package lazy

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trae-op/electron-modular/di"
	apperrors "github.com/trae-op/electron-modular/errors"
	"github.com/trae-op/electron-modular/ipc"
	"github.com/trae-op/electron-modular/logger"
	"github.com/trae-op/electron-modular/module"
)

// Result is the structured outcome returned to every trigger invocation.
type Result struct {
	Initialized bool         `json:"initialized"`
	Name        string       `json:"name"`
	Error       *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail carries the failure message across the wire.
type ErrorDetail struct {
	Message string `json:"message"`
}

// Gate installs trigger handlers for lazy modules and runs their activation.
type Gate struct {
	container *di.Container
	registrar *module.Registrar
	log       *logger.Logger
	tracer    trace.Tracer

	mu      sync.Mutex
	entries map[string]*entry
}

// entry tracks one lazy module's activation state. inflight is nil while
// idle (including after a failure), and holds the shared activation while
// initializing and after success.
type entry struct {
	mod     *module.Module
	trigger string
	bus     ipc.Bus

	mu       sync.Mutex
	inflight *activation
}

type activation struct {
	done   chan struct{}
	result Result
}

// NewGate creates a gate bound to a container and registrar.
func NewGate(c *di.Container, r *module.Registrar, log *logger.Logger) *Gate {
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("lazy")
	}
	return &Gate{
		container: c,
		registrar: r,
		log:       log,
		tracer:    otel.Tracer("electron-modular/lazy"),
		entries:   make(map[string]*entry),
	}
}

// Register validates the module's trigger and installs its handler on the
// bus. No container state is touched until the trigger fires. The trigger
// must be non-empty after trimming and unique within this gate.
func (g *Gate) Register(m *module.Module, bus ipc.Bus) error {
	trigger := strings.TrimSpace(m.Trigger())
	if trigger == "" {
		return apperrors.InvalidLazyTrigger(m.String())
	}

	g.mu.Lock()
	if _, exists := g.entries[trigger]; exists {
		g.mu.Unlock()
		return apperrors.DuplicateLazyTrigger(trigger)
	}
	e := &entry{mod: m, trigger: trigger, bus: bus}
	g.entries[trigger] = e
	g.mu.Unlock()

	if err := bus.Handle(trigger, func(ctx context.Context, _ any) (any, error) {
		return g.activate(ctx, e), nil
	}); err != nil {
		g.mu.Lock()
		delete(g.entries, trigger)
		g.mu.Unlock()
		return apperrors.Internal("installing lazy trigger handler", err).
			WithDetail("trigger", trigger)
	}

	g.log.Debug("lazy trigger registered", logger.Fields(
		logger.FieldModule, m.String(),
		logger.FieldTrigger, trigger,
	))
	return nil
}

// Invoke fires a trigger directly, bypassing the bus. Used by hosts that
// hold the gate rather than a transport.
func (g *Gate) Invoke(ctx context.Context, trigger string) (Result, error) {
	g.mu.Lock()
	e, ok := g.entries[strings.TrimSpace(trigger)]
	g.mu.Unlock()
	if !ok {
		return Result{}, apperrors.ChannelNotFound(trigger)
	}
	return g.activate(ctx, e), nil
}

// activate runs at-most-one initialization per trigger. Every caller that
// arrives while an activation is in flight receives that activation's
// result. Success is terminal; failure clears the in-flight state so the
// next invocation re-attempts from scratch.
func (g *Gate) activate(ctx context.Context, e *entry) Result {
	e.mu.Lock()
	if act := e.inflight; act != nil {
		e.mu.Unlock()
		<-act.done
		return act.result
	}
	act := &activation{done: make(chan struct{})}
	e.inflight = act
	e.mu.Unlock()

	act.result = g.initialize(ctx, e)
	if !act.result.Initialized {
		e.mu.Lock()
		e.inflight = nil
		e.mu.Unlock()
	}
	close(act.done)
	return act.result
}

// initialize runs the full registration pipeline for the lazy module,
// instantiates it, and attaches its IPC handlers. Errors are converted to a
// structured failure result instead of propagating; this is the one place in
// the system that recovers locally.
func (g *Gate) initialize(ctx context.Context, e *entry) Result {
	ctx, span := g.tracer.Start(ctx, "lazy.activate", trace.WithAttributes(
		attribute.String("lazy.trigger", e.trigger),
		attribute.String("lazy.module", e.mod.String()),
	))
	defer span.End()

	if err := g.run(ctx, e); err != nil {
		span.RecordError(err)
		g.log.Error("lazy activation failed", logger.Fields(
			logger.FieldModule, e.mod.String(),
			logger.FieldTrigger, e.trigger,
			logger.FieldError, err.Error(),
		))
		return Result{
			Initialized: false,
			Name:        e.trigger,
			Error:       &ErrorDetail{Message: err.Error()},
		}
	}

	g.log.Info("lazy module activated", logger.Fields(
		logger.FieldModule, e.mod.String(),
		logger.FieldTrigger, e.trigger,
	))
	return Result{Initialized: true, Name: e.trigger}
}

func (g *Gate) run(ctx context.Context, e *entry) error {
	if err := g.registrar.Init(ctx, e.mod); err != nil {
		return err
	}

	instance, err := g.container.Instantiate(ctx, e.mod, e.mod.Constructor())
	if err != nil {
		return err
	}
	g.container.RegisterInstance(e.mod, instance)

	for _, tok := range e.mod.Descriptor().HandlerTokens() {
		resolved, err := g.container.Resolve(ctx, e.mod, tok)
		if err != nil {
			return err
		}
		handler, ok := resolved.(ipc.Handler)
		if !ok {
			return apperrors.InvalidProvider(e.mod.String(), resolved).
				WithDetail("reason", "IPC handler does not implement ipc.Handler")
		}
		if err := handler.Register(e.bus); err != nil {
			return err
		}
	}
	return nil
}

// Triggers returns the registered trigger names.
func (g *Gate) Triggers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.entries))
	for name := range g.entries {
		names = append(names, name)
	}
	return names
}
