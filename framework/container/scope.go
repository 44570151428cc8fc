package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Scope is a request boundary. Scoped bindings resolved through the same
// Scope share one instance; different scopes never share. Singletons and
// pre-built instances are still served from the parent container.
//
//	scope := c.NewScope()
//	defer scope.Close()
//	svc, err := container.Resolve[*users.Service](scope, "users.service")
type Scope struct {
	id uuid.UUID
	c  *Container

	// guarded by c.mu
	closed bool
}

// scopeCache holds the instances cached for one scope. built keeps creation
// order so Close can release them in reverse.
type scopeCache struct {
	instances map[string]any
	built     []any
}

func (sc *scopeCache) put(key string, instance any) {
	sc.instances[key] = instance
	sc.built = append(sc.built, instance)
}

// NewScope opens a new scope on c.
func (c *Container) NewScope() *Scope {
	s := &Scope{id: uuid.New(), c: c}
	c.mu.Lock()
	c.scopes[s.id] = &scopeCache{instances: make(map[string]any)}
	c.mu.Unlock()
	return s
}

// ID returns the scope's unique id.
func (s *Scope) ID() string { return s.id.String() }

// Container returns the container the scope belongs to.
func (s *Scope) Container() *Container { return s.c }

// Make resolves abstract with s as the request boundary.
func (s *Scope) Make(abstract string) (any, error) {
	return s.c.resolve(abstract, s)
}

// Instance stores a value that only this scope can see, such as the id of
// the request that opened it. The scope does not take ownership: Close will
// not close it.
func (s *Scope) Instance(abstract string, instance any) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.closed {
		return ErrScopeClosed
	}
	s.c.scopes[s.id].instances[s.c.canonical(abstract)] = instance
	return nil
}

// Close evicts the scope's cached instances. Instances built by the scope
// that implement io.Closer are closed in reverse creation order. Closing
// twice is a no-op.
func (s *Scope) Close() error {
	s.c.mu.Lock()
	if s.closed {
		s.c.mu.Unlock()
		return nil
	}
	s.closed = true
	cache := s.c.scopes[s.id]
	delete(s.c.scopes, s.id)
	s.c.mu.Unlock()

	var errs []error
	for i := len(cache.built) - 1; i >= 0; i-- {
		closer, ok := cache.built[i].(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("container: closing %T: %w", cache.built[i], err))
		}
	}
	return errors.Join(errs...)
}

// ── context ───────────────────────────────────────────────────────────────────

type scopeContextKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFrom returns the scope stored on ctx by WithScope.
func ScopeFrom(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeContextKey{}).(*Scope)
	return s, ok && s != nil
}
