package module

import (
	"github.com/trae-op/electron-modular/di"
	"github.com/trae-op/electron-modular/window"
)

// Lazy marks a module as trigger-activated. The trigger is the name of the
// IPC channel whose first invocation initializes the module.
type Lazy struct {
	Trigger string
}

// Descriptor declares everything a module contributes to the container:
// imported modules, providers, IPC handler constructors, window managers,
// exported tokens, and optional lazy activation.
//
// Providers entries are either bare constructor functions (direct-class
// providers) or di.Provide descriptors. IPCHandlers entries are constructors
// whose product implements ipc.Handler; they are registered as providers
// keyed by their type token. Windows entries are registered as value
// providers keyed by window.Token(hash).
type Descriptor struct {
	Imports     []*Module
	Providers   []any
	IPCHandlers []any
	Windows     []window.Registration
	Exports     []di.Token
	Lazy        *Lazy
}

// HandlerTokens returns the type tokens under which the descriptor's IPC
// handlers are registered.
func (d *Descriptor) HandlerTokens() []di.Token {
	tokens := make([]di.Token, 0, len(d.IPCHandlers))
	for _, ctor := range d.IPCHandlers {
		if tok, ok := di.ConstructorToken(ctor); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
