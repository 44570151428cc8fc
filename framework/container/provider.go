package container

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the bindings of one part of the application.
//
// Register only binds; it must not resolve anything. Boot runs after every
// eager provider has been registered, so it may resolve any binding.
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("users.repository", container.Func(users.NewRepository))
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container) error

	// Provides returns the abstracts this provider registers. Only consulted
	// for deferred providers.
	Provides() []string

	// IsDeferred returns true if Register should wait until one of Provides()
	// is first needed.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Boot, Provides and
// IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders. Deferred providers
// are registered the first time the container misses one of their abstracts.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // abstract → provider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app and installs it as
// app's missing-binding handler.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	r := &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
	}
	app.OnMissing(r.loadDeferred)
	return r
}

// Register adds a provider. Eager providers are registered at once, and booted
// too if the registry has already booted. Registering the same provider twice
// is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, abstract := range provider.Provides() {
			r.deferred[abstract] = provider
		}
		r.mu.Unlock()
		return nil
	}

	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	provider.Register(r.app)
	if booted {
		return boot(r.app, provider)
	}
	return nil
}

// loadDeferred registers the deferred provider of abstract, if there is one.
// The registry lock is held while the provider registers so concurrent misses
// wait for it to finish.
func (r *ProviderRegistry) loadDeferred(abstract string) bool {
	r.mu.Lock()
	provider, ok := r.deferred[abstract]
	if !ok {
		r.mu.Unlock()
		// Another goroutine may have loaded it while we waited.
		return r.app.Bound(abstract)
	}
	for _, abs := range provider.Provides() {
		delete(r.deferred, abs)
	}
	provider.Register(r.app)
	booted := r.booted
	r.mu.Unlock()

	if booted {
		if err := boot(r.app, provider); err != nil {
			r.app.Logger().Error("container: booting deferred provider", zap.String("abstract", abstract), zap.Error(err))
		}
	}
	return true
}

// Boot calls Boot on every eager provider, in registration order, and stops at
// the first error. Calling it again is a no-op.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := boot(r.app, provider); err != nil {
			return err
		}
	}
	return nil
}

func boot(app *Container, provider ServiceProvider) error {
	if err := provider.Boot(app); err != nil {
		return fmt.Errorf("container: booting %T: %w", provider, err)
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
