// Package module defines module descriptors and the registration pipeline
// that translates them into container state.
//
// A module groups providers behind import/export boundaries. The Registrar
// walks a module's descriptor, registers its providers with the container,
// and recursively initializes imported modules, enforcing the lazy-module
// structural rules (no exports, no lazy-to-lazy or eager-to-lazy imports)
// before any registration happens.
package module
