package di

import "reflect"

// Provide describes how the container produces the value bound to a token.
// Exactly one of UseClass, UseFactory, UseValue, or UseExisting is honored,
// checked in that field order after UseExisting:
//
//   - UseExisting: alias — resolving Provide delegates to the aliased token
//     and caches the same instance under both tokens.
//   - UseFactory: the function is invoked with the resolved Inject values in
//     declaration order. An optional leading context.Context parameter
//     receives the resolution context.
//   - UseClass: a constructor function; dependencies come from Inject when
//     set, otherwise from the constructor's reflected parameter types.
//   - none of the above: value provider — UseValue is cached as-is, including
//     nil and zero values.
//
// A bare constructor function in a module's providers list is shorthand for
// a direct-class provider: its token is the type of its first return value.
type Provide struct {
	Provide     Token
	UseClass    any
	UseFactory  any
	UseValue    any
	UseExisting Token
	Inject      []Token
}

// kind classifies a normalized provider for the resolution dispatch.
type providerKind int

const (
	kindValue providerKind = iota
	kindClass
	kindFactory
	kindAlias
	kindInstance
)

func (p *Provide) kind() providerKind {
	switch {
	case p.UseExisting != nil:
		return kindAlias
	case p.UseFactory != nil:
		return kindFactory
	case p.UseClass != nil:
		return kindClass
	default:
		return kindValue
	}
}

// IsConstructor reports whether v can serve as a direct-class provider entry.
func IsConstructor(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	return t.Kind() == reflect.Func && t.NumOut() >= 1
}

// ConstructorToken derives the token a bare constructor provides: the type
// token of its first return value.
func ConstructorToken(ctor any) (Token, bool) {
	if !IsConstructor(ctor) {
		return nil, false
	}
	return typeTokenFor(reflect.TypeOf(ctor).Out(0)), true
}
