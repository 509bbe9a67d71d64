package di

import (
	"fmt"
	"reflect"
)

// Token identifies an injectable value. It is used as a map key throughout the
// container, so every implementation must be comparable. Three kinds are
// provided here: type tokens (identity of a Go type), name tokens (value
// equality on a string), and unique tokens (pointer identity). Module
// references implement Token as well, which lets a module resolve its own
// instance through the same lookup path as any provider.
type Token interface {
	// String returns a short human-readable name for logs and errors.
	String() string
	// Key returns a stable process-unique key for in-flight deduplication.
	Key() string
}

// typeToken identifies a value by its Go type.
type typeToken struct {
	t reflect.Type
}

func (tt typeToken) String() string { return tt.t.String() }

func (tt typeToken) Key() string { return "type:" + tt.t.PkgPath() + "/" + tt.t.String() }

// Type returns the token identifying type T. Two calls with the same type
// parameter yield equal tokens.
func Type[T any]() Token {
	return typeToken{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// TypeOf returns the token identifying the dynamic type of v.
func TypeOf(v any) Token {
	return typeToken{t: reflect.TypeOf(v)}
}

// typeTokenFor wraps an already-reflected type.
func typeTokenFor(t reflect.Type) Token {
	return typeToken{t: t}
}

// nameToken identifies a value by a string with value equality.
type nameToken string

func (nt nameToken) String() string { return string(nt) }

func (nt nameToken) Key() string { return "name:" + string(nt) }

// Name returns the token for the given string. Equal strings are equal tokens.
func Name(s string) Token {
	return nameToken(s)
}

// uniqueToken identifies a value by pointer identity. Two tokens created with
// the same description are still distinct.
type uniqueToken struct {
	desc string
}

func (ut *uniqueToken) String() string { return "unique(" + ut.desc + ")" }

func (ut *uniqueToken) Key() string { return fmt.Sprintf("unique:%p", ut) }

// Unique returns a fresh token that equals only itself.
func Unique(desc string) Token {
	return &uniqueToken{desc: desc}
}
