package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/trae-op/electron-modular/di"
	apperrors "github.com/trae-op/electron-modular/errors"
	"github.com/trae-op/electron-modular/ipc"
	"github.com/trae-op/electron-modular/lazy"
	"github.com/trae-op/electron-modular/logger"
	"github.com/trae-op/electron-modular/module"
)

type CoreService struct{}

func NewCoreService() *CoreService { return &CoreService{} }

type AppRoot struct{ Core *CoreService }

func NewAppRoot(core *CoreService) *AppRoot { return &AppRoot{Core: core} }

type PingHandler struct{}

func NewPingHandler() *PingHandler { return &PingHandler{} }

func (h *PingHandler) Register(b ipc.Bus) error {
	return b.Handle("ping", func(_ context.Context, _ any) (any, error) {
		return "pong", nil
	})
}

type PlainRoot struct{}

func NewPlainRoot() *PlainRoot { return &PlainRoot{} }

func newTestApp() *App {
	return NewApp(WithLogger(logger.Nop()))
}

func TestBootstrapEagerModule(t *testing.T) {
	app := newTestApp()
	m := module.New("AppModule", NewAppRoot, module.Descriptor{
		Providers:   []any{NewCoreService},
		IPCHandlers: []any{NewPingHandler},
	})

	if err := app.Bootstrap(context.Background(), m); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	v, err := app.Container.Resolve(context.Background(), m, m)
	if err != nil {
		t.Fatalf("resolving module instance failed: %v", err)
	}
	root, ok := v.(*AppRoot)
	if !ok {
		t.Fatalf("expected *AppRoot, got %T", v)
	}
	if root.Core == nil {
		t.Error("expected constructor dependency injected")
	}

	reply, err := app.Bus.Invoke(context.Background(), "ping", nil)
	if err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if reply != "pong" {
		t.Errorf("ping reply = %v", reply)
	}
}

func TestBootstrapProcessesModulesInOrder(t *testing.T) {
	app := newTestApp()
	var order []string
	first := module.New("FirstModule", func() *PlainRoot {
		order = append(order, "first")
		return &PlainRoot{}
	}, module.Descriptor{})
	second := module.New("SecondModule", func() *CoreService {
		order = append(order, "second")
		return &CoreService{}
	}, module.Descriptor{})

	if err := app.Bootstrap(context.Background(), first, second); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("unexpected instantiation order: %v", order)
	}
}

func TestBootstrapMissingDescriptor(t *testing.T) {
	app := newTestApp()
	m := module.Declare("Undeclared", NewPlainRoot)

	err := app.Bootstrap(context.Background(), m)
	if !apperrors.IsCode(err, apperrors.ErrCodeModuleDescriptorMissing) {
		t.Errorf("expected MODULE_DESCRIPTOR_MISSING, got %v", err)
	}
}

func TestBootstrapRoutesLazyModulesToGate(t *testing.T) {
	app := newTestApp()
	lazyMod := module.New("LazyModule", NewPlainRoot, module.Descriptor{
		Lazy: &module.Lazy{Trigger: "open"},
	})

	if err := app.Bootstrap(context.Background(), lazyMod); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if app.Container.HasModule(lazyMod) {
		t.Error("expected lazy module untouched until trigger fires")
	}

	v, err := app.Bus.Invoke(context.Background(), "open", nil)
	if err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	res, ok := v.(lazy.Result)
	if !ok {
		t.Fatalf("expected lazy.Result, got %T", v)
	}
	if !res.Initialized {
		t.Fatalf("activation failed: %+v", res)
	}
	if !app.Container.HasModule(lazyMod) {
		t.Error("expected lazy module registered after trigger")
	}
}

func TestBootstrapHaltsOnStructuralViolation(t *testing.T) {
	app := newTestApp()
	lazyMod := module.New("LazyModule", NewPlainRoot, module.Descriptor{
		Lazy: &module.Lazy{Trigger: "open"},
	})
	eager := module.New("EagerModule", NewPlainRoot, module.Descriptor{
		Imports: []*module.Module{lazyMod},
	})
	never := module.New("NeverModule", NewPlainRoot, module.Descriptor{})

	err := app.Bootstrap(context.Background(), eager, never)
	if !apperrors.IsCode(err, apperrors.ErrCodeEagerModuleImportsLazy) {
		t.Fatalf("expected EAGER_MODULE_IMPORTS_LAZY, got %v", err)
	}
	if app.Container.HasModule(never) {
		t.Error("expected startup to halt before later modules")
	}
}

func TestHooksRunInLifecycleOrder(t *testing.T) {
	app := newTestApp()
	var events []string
	app.OnStart(func(context.Context) error {
		events = append(events, "start")
		return nil
	})
	app.OnReady(func(context.Context) error {
		events = append(events, "ready")
		return nil
	})
	app.OnStop(func(context.Context) error {
		events = append(events, "stop")
		return nil
	})
	m := module.New("AppModule", func() *PlainRoot {
		events = append(events, "module")
		return &PlainRoot{}
	}, module.Descriptor{})

	if err := app.Bootstrap(context.Background(), m); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	want := []string{"start", "module", "ready", "stop"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestStartHookFailureAbortsBootstrap(t *testing.T) {
	app := newTestApp()
	hookErr := errors.New("migration failed")
	app.OnStart(func(context.Context) error { return hookErr })
	m := module.New("AppModule", NewPlainRoot, module.Descriptor{})

	err := app.Bootstrap(context.Background(), m)
	if !errors.Is(err, hookErr) {
		t.Fatalf("expected start hook error, got %v", err)
	}
	if app.Container.HasModule(m) {
		t.Error("expected no module processing after start hook failure")
	}
}

func TestShutdownClosesBus(t *testing.T) {
	app := newTestApp()
	m := module.New("AppModule", NewAppRoot, module.Descriptor{
		Providers:   []any{NewCoreService},
		IPCHandlers: []any{NewPingHandler},
	})
	if err := app.Bootstrap(context.Background(), m); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if _, err := app.Bus.Invoke(context.Background(), "ping", nil); err == nil {
		t.Error("expected bus closed after Shutdown")
	}
}

func TestWithContainerAndBusOptions(t *testing.T) {
	c := di.NewContainer(di.WithLogger(logger.Nop()))
	bus := ipc.NewMemoryBus()
	app := NewApp(WithLogger(logger.Nop()), WithContainer(c), WithBus(bus))

	if app.Container != c {
		t.Error("expected supplied container")
	}
	if app.Bus != ipc.Bus(bus) {
		t.Error("expected supplied bus")
	}
}
