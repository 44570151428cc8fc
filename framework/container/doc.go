// Package container provides the binding registry and resolver used to wire
// the application.
//
// # Overview
//
// A binding maps a service identifier (a string abstract) to a Concrete: the
// ordered list of abstracts it needs and a factory that receives them. The
// resolver walks that list depth-first, builds leaves first, and caches the
// result according to the binding's Lifetime.
//
// Dependencies are declared explicitly. There is no reflection on
// constructor parameters and no auto-binding: an abstract nobody bound fails
// with *MissingBindingError.
//
// # Lifetimes
//
//	// Transient: a new instance on every Make (the default)
//	c.Bind("mail.mailer", container.Func3(mail.New, "config", "mail.outbox", "log"))
//
//	// Singleton: built once, on first use
//	c.Singleton("mail.outbox", container.Value(mail.NewOutbox()))
//
//	// Scoped: one instance per Scope
//	c.Scoped("log.request", container.Func2(logging.ForRequest, "log", "request.id"))
//
// Rebinding an abstract discards its cached instances. Unbind removes it.
//
// # Resolving
//
//	repo, err := container.Resolve[*users.Repository](c, "users.repository")
//
//	scope := c.NewScope()
//	defer scope.Close()
//	svc, err := container.Resolve[*users.Service](scope, "users.service")
//
// # Errors
//
//	*MissingBindingError   nothing bound for the abstract
//	*CyclicDependencyError the abstract is already being built (A -> B -> A)
//	*ScopeRequiredError    a scoped binding was resolved without a scope
//	*ResolutionError       a factory or extender failed
//	ErrScopeClosed         the scope has been closed
//
// # Resolving from inside a factory
//
// Factories never get the container. A factory that must pick what to
// resolve at build time lists ResolverKey in its needs and receives a
// Resolver tied to the running resolution.
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	if err := registry.Boot(); err != nil { ... }
//
// A deferred provider (IsDeferred returns true) is registered the first time
// one of its Provides() abstracts is missing during a resolution.
package container
