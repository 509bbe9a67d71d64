package module

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/trae-op/electron-modular/di"
	apperrors "github.com/trae-op/electron-modular/errors"
	"github.com/trae-op/electron-modular/logger"
	"github.com/trae-op/electron-modular/window"
)

// Registrar translates module descriptors into container state: it registers
// providers, recursively initializes imported modules, and registers IPC
// handler and window-manager providers.
type Registrar struct {
	container *di.Container
	log       *logger.Logger
}

// NewRegistrar creates a registrar bound to a container.
func NewRegistrar(c *di.Container, log *logger.Logger) *Registrar {
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("registrar")
	}
	return &Registrar{container: c, log: log}
}

// Init registers a module and its import graph. Registration is strictly
// once per module: when the module is already present Init returns
// immediately, which makes it safe to reach the same module through multiple
// import paths. Structural constraints on lazy modules are validated before
// any state is touched, so a violation never leaks partial registration.
func (r *Registrar) Init(ctx context.Context, m *Module) error {
	desc := m.Descriptor()
	if desc == nil {
		return apperrors.ModuleDescriptorMissing(m.String())
	}

	if err := validateStructure(m, desc); err != nil {
		return err
	}

	if !r.container.AddModule(m, desc.Exports) {
		return nil
	}

	r.container.SetModuleMetadata(m, di.ModuleMetadata{Imports: importTokens(desc.Imports)})

	// Providers, imports, handlers, and windows have no ordering dependency
	// on each other; they fan out and join here.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.registerProviders(m, desc.Providers) })
	g.Go(func() error { return r.initImports(gctx, desc.Imports) })
	g.Go(func() error { return r.registerHandlers(m, desc.IPCHandlers) })
	g.Go(func() error { return r.registerWindows(m, desc.Windows) })
	if err := g.Wait(); err != nil {
		return err
	}

	r.log.Debug("module initialized", logger.Fields(
		logger.FieldModule, m.String(),
		"providers", len(desc.Providers),
		"imports", len(desc.Imports),
	))
	return nil
}

// validateStructure enforces the eager/lazy import graph rules at
// registration time rather than at first resolve.
func validateStructure(m *Module, desc *Descriptor) error {
	if m.IsLazy() {
		if len(desc.Exports) > 0 {
			return apperrors.LazyModuleExportsNotAllowed(m.String())
		}
		for _, imported := range desc.Imports {
			if imported.IsLazy() {
				return apperrors.LazyModuleImportsLazy(m.String(), imported.String())
			}
		}
		return nil
	}

	for _, imported := range desc.Imports {
		if imported.IsLazy() {
			return apperrors.EagerModuleImportsLazy(m.String(), imported.String())
		}
	}
	return nil
}

func (r *Registrar) registerProviders(m *Module, providers []any) error {
	for _, entry := range providers {
		switch p := entry.(type) {
		case di.Provide:
			if p.Provide == nil {
				return apperrors.InvalidProvider(m.String(), entry)
			}
			if err := r.container.AddProvider(m, p.Provide, p); err != nil {
				return err
			}
		case *di.Provide:
			if p == nil || p.Provide == nil {
				return apperrors.InvalidProvider(m.String(), entry)
			}
			if err := r.container.AddProvider(m, p.Provide, p); err != nil {
				return err
			}
		default:
			tok, ok := di.ConstructorToken(entry)
			if !ok {
				return apperrors.InvalidProvider(m.String(), entry)
			}
			if err := r.container.AddProvider(m, tok, entry); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registrar) initImports(ctx context.Context, imports []*Module) error {
	for _, imported := range imports {
		if err := r.Init(ctx, imported); err != nil {
			return err
		}
	}
	return nil
}

// registerHandlers registers IPC handler constructors as providers keyed by
// their type token, so bootstrap can resolve them after the module is live.
func (r *Registrar) registerHandlers(m *Module, handlers []any) error {
	for _, ctor := range handlers {
		tok, ok := di.ConstructorToken(ctor)
		if !ok {
			return apperrors.InvalidProvider(m.String(), ctor)
		}
		if err := r.container.AddProvider(m, tok, ctor); err != nil {
			return err
		}
	}
	return nil
}

// registerWindows registers window-manager declarations as value providers
// keyed by their configured hash.
func (r *Registrar) registerWindows(m *Module, windows []window.Registration) error {
	for _, reg := range windows {
		if err := r.container.AddProvider(m, window.Token(reg.Config.Hash), reg); err != nil {
			return err
		}
	}
	return nil
}

func importTokens(imports []*Module) []di.Token {
	tokens := make([]di.Token, 0, len(imports))
	for _, imported := range imports {
		tokens = append(tokens, imported)
	}
	return tokens
}
