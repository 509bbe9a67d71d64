package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/trae-op/electron-modular/errors"
	"github.com/trae-op/electron-modular/logger"
)

// ModuleMetadata is the slice of a module descriptor the container needs for
// import-graph traversal. The registration pipeline stores it after creating
// the registry entry; last write wins.
type ModuleMetadata struct {
	Imports []Token
}

// moduleEntry is the registry entry owned by the container for one module:
// its provider map and its export set.
type moduleEntry struct {
	providers map[Token]any
	exports   map[Token]struct{}
}

// moduleKey keys the resolution cache: the same token may be reached through
// different import paths, so cached results are per requesting module.
type moduleKey struct {
	module Token
	token  Token
}

// chain tracks one resolution call chain for cycle detection. keys guards the
// import-graph traversal (module, token pairs); tokens guards provider
// instantiation (a token under construction anywhere in the chain is a
// cycle, since instances are process-wide singletons). Slices are copied on
// append so branches fanned out by errgroup never share backing arrays.
type chain struct {
	keys   []moduleKey
	tokens []Token
}

func (ch chain) withKey(k moduleKey) chain {
	keys := make([]moduleKey, len(ch.keys)+1)
	copy(keys, ch.keys)
	keys[len(ch.keys)] = k
	return chain{keys: keys, tokens: ch.tokens}
}

func (ch chain) withToken(t Token) chain {
	tokens := make([]Token, len(ch.tokens)+1)
	copy(tokens, ch.tokens)
	tokens[len(ch.tokens)] = t
	return chain{keys: ch.keys, tokens: tokens}
}

func (ch chain) names() []string {
	names := make([]string, 0, len(ch.tokens))
	for _, t := range ch.tokens {
		names = append(names, t.String())
	}
	return names
}

// Container owns the module registry, the global singleton cache, and the
// per-module resolution cache, and performs recursive resolution across the
// module import graph. All state is mutex-guarded; resolution is safe for
// concurrent use.
type Container struct {
	mu         sync.RWMutex
	modules    map[Token]*moduleEntry
	metadata   map[Token]ModuleMetadata
	singletons map[Token]any
	resolved   map[moduleKey]any

	flight singleflight.Group
	log    *logger.Logger
	tracer trace.Tracer
}

// Option configures a Container during creation.
type Option func(*Container)

// WithLogger sets the container's logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Container) { c.log = l }
}

// NewContainer creates an empty container.
func NewContainer(opts ...Option) *Container {
	c := &Container{
		modules:    make(map[Token]*moduleEntry),
		metadata:   make(map[Token]ModuleMetadata),
		singletons: make(map[Token]any),
		resolved:   make(map[moduleKey]any),
		tracer:     otel.Tracer("electron-modular/di"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.GetGlobalLogger().WithComponent("container")
	}
	return c
}

// --- Registration surface ---

// AddModule creates the registry entry for ref with the given export set.
// It returns false without mutation when the module is already present;
// re-registration is idempotent by design, not an error.
func (c *Container) AddModule(ref Token, exports []Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.modules[ref]; exists {
		return false
	}

	entry := &moduleEntry{
		providers: make(map[Token]any),
		exports:   make(map[Token]struct{}, len(exports)),
	}
	for _, e := range exports {
		entry.exports[e] = struct{}{}
	}
	c.modules[ref] = entry

	c.log.Debug("module added", logger.Fields(logger.FieldModule, ref.String()))
	return true
}

// HasModule reports whether ref has a registry entry.
func (c *Container) HasModule(ref Token) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.modules[ref]
	return ok
}

// SetModuleMetadata stores the import list used for graph traversal. May be
// called multiple times; last write wins.
func (c *Container) SetModuleMetadata(ref Token, meta ModuleMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[ref] = meta
}

// AddProvider registers a provider (or a ready instance) for token on the
// given module. The module must have been added first.
func (c *Container) AddProvider(moduleRef, token Token, provider any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.modules[moduleRef]
	if !ok {
		return apperrors.ModuleNotRegistered(moduleRef.String())
	}
	entry.providers[token] = provider

	c.log.Debug("provider added", logger.Fields(
		logger.FieldModule, moduleRef.String(),
		logger.FieldToken, token.String(),
	))
	return nil
}

// RegisterInstance inserts an instance directly into the global singleton
// cache, bypassing per-module provider lookup. Used for process-wide
// singletons supplied outside the provider system.
func (c *Container) RegisterInstance(token Token, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.singletons[token] = instance
	delete(c.resolved, moduleKey{module: token, token: token})
}

// --- Resolution ---

// Resolve returns the instance bound to token as seen from moduleRef,
// instantiating it on first use. It returns (nil, nil) when token is the
// module's own reference and no self-provider exists: a module instance may
// legitimately be absent. Any other miss is a PROVIDER_NOT_FOUND error.
func (c *Container) Resolve(ctx context.Context, moduleRef, token Token) (any, error) {
	ctx, span := c.tracer.Start(ctx, "di.resolve", trace.WithAttributes(
		attribute.String("di.module", moduleRef.String()),
		attribute.String("di.token", token.String()),
	))
	defer span.End()

	v, err := c.resolve(ctx, moduleRef, token, chain{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}

func (c *Container) resolve(ctx context.Context, moduleRef, token Token, ch chain) (any, error) {
	key := moduleKey{module: moduleRef, token: token}

	c.mu.RLock()
	if v, ok := c.resolved[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	if v, ok := c.singletons[token]; ok {
		c.mu.RUnlock()
		c.storeResolved(key, v)
		return v, nil
	}
	var provider any
	var found bool
	if entry, ok := c.modules[moduleRef]; ok {
		provider, found = entry.providers[token]
	}
	meta := c.metadata[moduleRef]
	c.mu.RUnlock()

	for _, seen := range ch.keys {
		if seen == key {
			return nil, apperrors.DependencyCycle(append(ch.names(), token.String()))
		}
	}
	ch = ch.withKey(key)

	if !found {
		for _, imported := range meta.Imports {
			if !c.moduleExports(imported, token) {
				continue
			}
			v, err := c.resolve(ctx, imported, token, ch)
			if err != nil {
				if apperrors.IsCode(err, apperrors.ErrCodeProviderNotFound) {
					continue
				}
				return nil, err
			}
			c.storeResolved(key, v)
			return v, nil
		}
		if token == moduleRef {
			return nil, nil
		}
		return nil, apperrors.ProviderNotFound(token.String(), moduleRef.String())
	}

	for _, building := range ch.tokens {
		if building == token {
			return nil, apperrors.DependencyCycle(append(ch.names(), token.String()))
		}
	}
	ch = ch.withToken(token)

	v, err, _ := c.flight.Do(token.Key(), func() (any, error) {
		c.mu.RLock()
		if v, ok := c.singletons[token]; ok {
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()
		return c.instantiate(ctx, moduleRef, token, provider, ch)
	})
	if err != nil {
		return nil, err
	}
	c.storeResolved(key, v)
	return v, nil
}

// instantiate dispatches on the provider shape and caches the produced value
// in the singleton cache. Dependency sub-resolutions run against the
// requesting module's own visibility, including its imports.
func (c *Container) instantiate(ctx context.Context, moduleRef, token Token, provider any, ch chain) (any, error) {
	switch p := provider.(type) {
	case *Provide:
		return c.instantiateProvide(ctx, moduleRef, token, p, ch)
	case Provide:
		return c.instantiateProvide(ctx, moduleRef, token, &p, ch)
	default:
		if IsConstructor(provider) {
			v, err := c.construct(ctx, moduleRef, provider, DependencyTokens(provider), ch)
			if err != nil {
				return nil, err
			}
			c.storeSingleton(token, v)
			return v, nil
		}
		// A ready instance was stored via AddProvider.
		c.storeSingleton(token, provider)
		return provider, nil
	}
}

func (c *Container) instantiateProvide(ctx context.Context, moduleRef, token Token, p *Provide, ch chain) (any, error) {
	switch p.kind() {
	case kindAlias:
		v, err := c.resolve(ctx, moduleRef, p.UseExisting, ch)
		if err != nil {
			return nil, err
		}
		c.storeSingleton(token, v)
		return v, nil

	case kindFactory:
		deps, err := c.resolveDeps(ctx, moduleRef, p.Inject, ch)
		if err != nil {
			return nil, err
		}
		v, err := callFunc(ctx, p.UseFactory, deps)
		if err != nil {
			return nil, err
		}
		c.storeSingleton(token, v)
		return v, nil

	case kindClass:
		tokens := p.Inject
		if tokens == nil {
			tokens = DependencyTokens(p.UseClass)
		}
		v, err := c.construct(ctx, moduleRef, p.UseClass, tokens, ch)
		if err != nil {
			return nil, err
		}
		c.storeSingleton(token, v)
		return v, nil

	default:
		c.storeSingleton(token, p.UseValue)
		return p.UseValue, nil
	}
}

// construct resolves tokens against moduleRef and invokes ctor with the
// resolved values in order.
func (c *Container) construct(ctx context.Context, moduleRef Token, ctor any, tokens []Token, ch chain) (any, error) {
	deps, err := c.resolveDeps(ctx, moduleRef, tokens, ch)
	if err != nil {
		return nil, err
	}
	return callFunc(ctx, ctor, deps)
}

// resolveDeps resolves tokens concurrently (fan-out, fan-in) and returns the
// values in declaration order.
func (c *Container) resolveDeps(ctx context.Context, moduleRef Token, tokens []Token, ch chain) ([]any, error) {
	for i, tok := range tokens {
		if tok == nil {
			return nil, apperrors.InvalidConstructor(fmt.Sprintf("no token for dependency at index %d", i))
		}
	}

	values := make([]any, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	for i, tok := range tokens {
		g.Go(func() error {
			v, err := c.resolve(gctx, moduleRef, tok, ch)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// Instantiate performs constructor injection for ctor against moduleRef's
// visibility without binding the result to any token. Bootstrap and the lazy
// gate use it to build module instances; callers register the result with
// RegisterInstance.
func (c *Container) Instantiate(ctx context.Context, moduleRef Token, ctor any) (any, error) {
	if !IsConstructor(ctor) {
		return nil, apperrors.InvalidConstructor(fmt.Sprintf("module %s constructor must be a function returning a value, got %T", moduleRef.String(), ctor))
	}
	return c.construct(ctx, moduleRef, ctor, DependencyTokens(ctor), chain{})
}

// --- internals ---

func (c *Container) moduleExports(ref, token Token) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.modules[ref]
	if !ok {
		return false
	}
	_, ok = entry.exports[token]
	return ok
}

func (c *Container) storeResolved(key moduleKey, v any) {
	c.mu.Lock()
	c.resolved[key] = v
	c.mu.Unlock()
}

func (c *Container) storeSingleton(token Token, v any) {
	c.mu.Lock()
	c.singletons[token] = v
	c.mu.Unlock()
}

// Close closes every cached singleton that implements Close() error, in
// unspecified order. Registry entries and caches live for the process
// lifetime; Close exists for tests and orderly shutdown of host resources.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for token, instance := range c.singletons {
		closer, ok := instance.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s: %w", token.String(), err)
		}
	}
	return firstErr
}

// callFunc invokes a constructor or factory with resolved dependency values.
// A leading context.Context parameter receives ctx. The function must return
// (T) or (T, error).
func callFunc(ctx context.Context, fn any, deps []any) (any, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, apperrors.InvalidConstructor(fmt.Sprintf("constructor must be a function, got %T", fn))
	}
	t := v.Type()

	args := make([]reflect.Value, 0, t.NumIn())
	if t.NumIn() > 0 && t.In(0) == ctxType {
		args = append(args, reflect.ValueOf(ctx))
	}
	offset := len(args)
	if len(deps) != t.NumIn()-offset {
		return nil, apperrors.InvalidConstructor(fmt.Sprintf("constructor takes %d dependencies, got %d", t.NumIn()-offset, len(deps)))
	}

	for i, dep := range deps {
		paramType := t.In(i + offset)
		if dep == nil {
			args = append(args, reflect.Zero(paramType))
			continue
		}
		dv := reflect.ValueOf(dep)
		if !dv.Type().AssignableTo(paramType) {
			if !dv.Type().ConvertibleTo(paramType) {
				return nil, apperrors.InvalidConstructor(fmt.Sprintf("dependency %d is %T, not assignable to %s", i, dep, paramType))
			}
			dv = dv.Convert(paramType)
		}
		args = append(args, dv)
	}

	results := v.Call(args)
	switch len(results) {
	case 1:
		return results[0].Interface(), nil
	case 2:
		if err, ok := results[1].Interface().(error); ok && err != nil {
			return nil, err
		}
		return results[0].Interface(), nil
	default:
		return nil, apperrors.InvalidConstructor("constructor must return (T) or (T, error)")
	}
}
