// Package ipc is the channel transport between the module system and its
// host. A Bus maps channel names to handlers; the lazy gate and module IPC
// handlers only need "register a handler for channel X" and "invoke channel
// X", so any transport that can do both can back a Bus. MemoryBus serves
// in-process hosts and tests; HTTPBridge exposes a bus over HTTP for
// renderer-style clients.
package ipc

import "context"

// HandlerFunc handles a single invocation on a channel. The returned value
// must be JSON-serializable when the bus is bridged to a wire transport.
type HandlerFunc func(ctx context.Context, payload any) (any, error)

// Bus registers named channels and dispatches invocations to them.
type Bus interface {
	// Handle installs a handler for a channel. Installing a second handler
	// on the same channel is an error.
	Handle(channel string, h HandlerFunc) error

	// Invoke dispatches a payload to a channel's handler and returns its
	// result. Unknown channels fail with CHANNEL_NOT_FOUND.
	Invoke(ctx context.Context, channel string, payload any) (any, error)

	// Channels returns the registered channel names.
	Channels() []string

	// Close releases the transport.
	Close() error
}

// Handler is implemented by module IPC handler instances. After a module goes
// live, bootstrap resolves each declared handler and calls Register so it can
// attach its channels to the bus.
type Handler interface {
	Register(b Bus) error
}
