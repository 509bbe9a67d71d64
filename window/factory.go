package window

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/trae-op/electron-modular/logger"
	"github.com/trae-op/electron-modular/settings"
)

// Handle identifies a created window. Closed reports whether the host has
// torn the window down; a closed handle is evicted from the cache on the
// next Create.
type Handle struct {
	ID   uuid.UUID
	Hash string
	URL  string

	mu     sync.Mutex
	closed bool
}

// Close marks the handle as torn down.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Closed reports whether the handle was closed.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Factory creates a window for one registration.
type Factory interface {
	Create(ctx context.Context, params map[string]string) (*Handle, error)
}

// CreateFunc adapts the host's window creation function.
type CreateFunc func(ctx context.Context, reg Registration, params map[string]string) (*Handle, error)

// Cache wraps a CreateFunc with per-hash handle caching: a second Create for
// the same hash returns the live handle instead of opening a new window.
type Cache struct {
	mu      sync.Mutex
	create  CreateFunc
	handles map[string]*Handle
	log     *logger.Logger
}

// NewCache creates a handle cache around the host's creation function.
func NewCache(create CreateFunc, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("window")
	}
	return &Cache{
		create:  create,
		handles: make(map[string]*Handle),
		log:     log,
	}
}

// Factory returns a Factory bound to one registration, backed by the cache.
func (c *Cache) Factory(reg Registration) Factory {
	return &cachedFactory{cache: c, reg: reg}
}

type cachedFactory struct {
	cache *Cache
	reg   Registration
}

func (f *cachedFactory) Create(ctx context.Context, params map[string]string) (*Handle, error) {
	return f.cache.get(ctx, f.reg, params)
}

func (c *Cache) get(ctx context.Context, reg Registration, params map[string]string) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.handles[reg.Config.Hash]; ok && !h.Closed() {
		return h, nil
	}

	h, err := c.create(ctx, reg, params)
	if err != nil {
		return nil, err
	}
	c.handles[reg.Config.Hash] = h

	c.log.Debug("window created", logger.Fields(
		logger.FieldWindow, reg.Config.Hash,
		"url", h.URL,
	))
	return h, nil
}

// Release drops the cached handle for a hash without closing it.
func (c *Cache) Release(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handles, hash)
}

// NewMemoryFactory returns a CreateFunc that fabricates handles without any
// GUI toolkit, deriving the URL from settings. Used by tests and headless
// hosts.
func NewMemoryFactory() CreateFunc {
	return func(_ context.Context, reg Registration, _ map[string]string) (*Handle, error) {
		s, err := settings.Get()
		if err != nil {
			return nil, err
		}
		return &Handle{
			ID:   uuid.New(),
			Hash: reg.Config.Hash,
			URL:  PageURL(s, reg.Config),
		}, nil
	}
}
