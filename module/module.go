package module

import (
	"fmt"

	"github.com/trae-op/electron-modular/di"
)

// Module is a named group of providers plus import/export declarations and
// optional lazy-activation config. The *Module pointer is the module's
// identity: it keys the container's registry and doubles as the token under
// which the module's own instance is resolvable.
type Module struct {
	name string
	ctor any
	desc *Descriptor
}

// New creates a module reference carrying its descriptor. The constructor is
// instantiated with resolved dependencies when the module goes live (at
// bootstrap for eager modules, on trigger for lazy ones).
func New(name string, ctor any, desc Descriptor) *Module {
	return &Module{name: name, ctor: ctor, desc: &desc}
}

// Declare creates a module reference without a descriptor. Passing it to
// bootstrap fails with MODULE_DESCRIPTOR_MISSING; Declare exists so a module
// identity can be referenced before its descriptor is authored.
func Declare(name string, ctor any) *Module {
	return &Module{name: name, ctor: ctor}
}

// String implements di.Token.
func (m *Module) String() string { return m.name }

// Key implements di.Token. Identity is the pointer, not the name: two modules
// that happen to share a name remain distinct registry entries.
func (m *Module) Key() string { return fmt.Sprintf("module:%s@%p", m.name, m) }

// Constructor returns the module's constructor function.
func (m *Module) Constructor() any { return m.ctor }

// Descriptor returns the module's descriptor, or nil when declared without one.
func (m *Module) Descriptor() *Descriptor { return m.desc }

// IsLazy reports whether the module defers registration behind a trigger.
func (m *Module) IsLazy() bool {
	return m.desc != nil && m.desc.Lazy != nil
}

// Trigger returns the lazy trigger name, or "" for eager modules.
func (m *Module) Trigger() string {
	if !m.IsLazy() {
		return ""
	}
	return m.desc.Lazy.Trigger
}

var _ di.Token = (*Module)(nil)
