package ipc

import (
	"context"
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/trae-op/electron-modular/errors"
)

// MemoryBus is an in-process Bus. It is safe for concurrent use.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	closed   bool
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string]HandlerFunc)}
}

// Handle installs a handler for a channel.
func (b *MemoryBus) Handle(channel string, h HandlerFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("ipc: bus is closed")
	}
	if _, exists := b.handlers[channel]; exists {
		return fmt.Errorf("ipc: channel %q already has a handler", channel)
	}
	b.handlers[channel] = h
	return nil
}

// Invoke dispatches to the channel's handler.
func (b *MemoryBus) Invoke(ctx context.Context, channel string, payload any) (any, error) {
	b.mu.RLock()
	h, ok := b.handlers[channel]
	b.mu.RUnlock()

	if !ok {
		return nil, apperrors.ChannelNotFound(channel)
	}
	return h(ctx, payload)
}

// Channels returns the registered channel names, sorted.
func (b *MemoryBus) Channels() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close drops all handlers and rejects further registration.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string]HandlerFunc)
	b.closed = true
	return nil
}
