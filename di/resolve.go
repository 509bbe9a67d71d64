package di

import (
	"context"
	"fmt"
)

// Resolve resolves a token with type safety, returning an error on failure or
// type mismatch.
//
// Example:
//
//	svc, err := di.Resolve[*UpdaterService](ctx, c, appModule, di.Type[*UpdaterService]())
func Resolve[T any](ctx context.Context, c *Container, moduleRef, token Token) (T, error) {
	var zero T
	instance, err := c.Resolve(ctx, moduleRef, token)
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve %s: %w", token.String(), err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: token %s is %T, expected %T", token.String(), instance, zero)
	}
	return result, nil
}

// MustResolve resolves a token with type safety, panicking on error. Use in
// composition roots where a miss is a programming error.
func MustResolve[T any](ctx context.Context, c *Container, moduleRef, token Token) T {
	result, err := Resolve[T](ctx, c, moduleRef, token)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// TryResolve resolves a token, returning the zero value and false when the
// token is absent or of a different type. Use for optional dependencies.
func TryResolve[T any](ctx context.Context, c *Container, moduleRef, token Token) (T, bool) {
	var zero T
	instance, err := c.Resolve(ctx, moduleRef, token)
	if err != nil {
		return zero, false
	}
	result, ok := instance.(T)
	if !ok {
		return zero, false
	}
	return result, true
}
