// Package di implements the dependency-injection container: tokens, provider
// shapes, constructor inspection, and recursive resolution across the module
// import graph.
//
// Tokens identify injectable values and come in three kinds: type tokens
// (di.Type[T]), name tokens (di.Name), and unique tokens (di.Unique). A
// provider binds a token to a production rule — a constructor, a factory, a
// ready value, or an alias to another token. Resolved instances are cached
// process-wide: a token resolves to the same instance no matter which module
// reached it.
//
// Modules own providers and control visibility: a provider is reachable from
// an importing module only when its owning module exports the token.
//
//	c := di.NewContainer()
//	c.AddModule(mod, []di.Token{di.Type[*Service]()})
//	c.AddProvider(mod, di.Type[*Service](), NewService)
//	svc, err := di.Resolve[*Service](ctx, c, mod, di.Type[*Service]())
package di
