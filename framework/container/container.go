package container

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// binding is a registered recipe plus its lifetime.
type binding struct {
	concrete Concrete
	lifetime Lifetime
}

// BindOption customises a binding at registration time.
type BindOption func(*binding)

// WithLifetime sets the lifetime of a binding. Bind defaults to Transient.
func WithLifetime(l Lifetime) BindOption {
	return func(b *binding) { b.lifetime = l }
}

// Extender decorates an instance right after its factory returns and before
// it is cached.
type Extender func(instance any) (any, error)

// Option configures a Container.
type Option func(*Container)

// WithLogger makes the container log bindings and constructions at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// Resolver is anything that can produce an instance for an abstract: the root
// Container or a Scope.
type Resolver interface {
	Make(abstract string) (any, error)
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container: a binding registry and the resolver that
// walks it.
//
// A single mutex guards the registry and every cache. A top-level Make holds
// it for the whole graph walk, so a singleton is never built twice. Factories
// get their dependencies as arguments. A factory that must resolve more on
// its own needs ResolverKey, which resolves inside the running walk instead of
// taking the lock again. Callbacks run after the lock is released.
type Container struct {
	mu  sync.Mutex
	log *zap.Logger

	// abstract → binding
	bindings map[string]*binding

	// abstract → singleton or pre-built instance
	instances map[string]any

	// scope id → scoped instances
	scopes map[uuid.UUID]*scopeCache

	// alias → abstract (canonical key)
	aliases map[string]string

	extenders map[string][]Extender

	// tag → []abstract
	tags map[string][]string

	// contextual[consumer][abstract] = rule
	contextual map[string]map[string]contextualRule

	reboundCallbacks map[string][]func(any)
	afterResolving   []func(string, any)

	// missing is consulted when an abstract has no binding; see OnMissing.
	missing func(abstract string) bool
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		log:              zap.NewNop(),
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		scopes:           make(map[uuid.UUID]*scopeCache),
		aliases:          make(map[string]string),
		extenders:        make(map[string][]Extender),
		tags:             make(map[string][]string),
		contextual:       make(map[string]map[string]contextualRule),
		reboundCallbacks: make(map[string][]func(any)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger replaces the container's logger. A nil logger disables logging.
func (c *Container) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = l
}

// Logger returns the logger the container writes to.
func (c *Container) Logger() *zap.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers or replaces the recipe for abstract. The lifetime defaults to
// Transient. Any singleton or scoped instance already cached for abstract is
// discarded, so the next resolution uses the new recipe.
//
//	c.Bind("mailer", container.Func2(mail.NewLogMailer, "mail.outbox", "log"))
func (c *Container) Bind(abstract string, concrete Concrete, opts ...BindOption) {
	b := &binding{concrete: concrete, lifetime: Transient}
	for _, opt := range opts {
		opt(b)
	}
	reserved(abstract)
	if !b.lifetime.Valid() {
		panic(fmt.Sprintf("container: invalid lifetime %q for [%s]", b.lifetime, abstract))
	}

	c.mu.Lock()
	rebuilt := c.bind(abstract, b)
	c.mu.Unlock()

	if rebuilt {
		c.fireRebound(abstract)
	}
}

// Singleton registers a recipe whose result is built once and cached.
func (c *Container) Singleton(abstract string, concrete Concrete) {
	c.Bind(abstract, concrete, WithLifetime(Singleton))
}

// Scoped registers a recipe whose result is cached once per Scope.
func (c *Container) Scoped(abstract string, concrete Concrete) {
	c.Bind(abstract, concrete, WithLifetime(Scoped))
}

// Instance registers a pre-built value as a singleton.
func (c *Container) Instance(abstract string, instance any) {
	reserved(abstract)
	c.mu.Lock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.discard(key)
	c.instances[key] = instance
	cbs := slices.Clone(c.reboundCallbacks[key])
	c.mu.Unlock()

	for _, cb := range cbs {
		cb(instance)
	}
}

// bind stores b and reports whether a singleton had already been built for
// the abstract. Caller holds mu.
func (c *Container) bind(abstract string, b *binding) bool {
	key := c.canonical(abstract)
	_, wasBuilt := c.instances[key]
	c.discard(key)
	c.bindings[key] = b
	c.log.Debug("container: bound",
		zap.String("abstract", key),
		zap.Stringer("lifetime", b.lifetime),
		zap.Strings("needs", b.concrete.Needs))
	return wasBuilt
}

// discard drops every cached instance of key. Caller holds mu.
func (c *Container) discard(key string) {
	delete(c.instances, key)
	for _, sc := range c.scopes {
		delete(sc.instances, key)
	}
}

// Unbind removes the binding for abstract along with any cached instance.
// Resolving it afterwards fails with *MissingBindingError.
func (c *Container) Unbind(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.discard(key)
	c.log.Debug("container: unbound", zap.String("abstract", key))
}

// Alias registers an alternative name for an abstract.
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	reserved(alias)
	c.aliases[alias] = c.canonical(abstract)
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates every instance built for abstract from now on. If a
// singleton is already cached it is decorated in place and rebound callbacks
// fire with the result.
//
//	c.Extend("mailer", func(m any) (any, error) {
//	    return &CountingMailer{Inner: m.(mail.Mailer)}, nil
//	})
func (c *Container) Extend(abstract string, fn Extender) error {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.extenders[key] = append(c.extenders[key], fn)

	inst, ok := c.instances[key]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	extended, err := fn(inst)
	if err != nil {
		c.mu.Unlock()
		return &ResolutionError{Abstract: key, Cause: err}
	}
	c.instances[key] = extended
	cbs := slices.Clone(c.reboundCallbacks[key])
	c.mu.Unlock()

	for _, cb := range cbs {
		cb(extended)
	}
	return nil
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates abstracts under a named group.
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves every abstract registered under tag, in tagging order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.Lock()
	abstracts := slices.Clone(c.tags[tag])
	c.mu.Unlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		inst, err := c.Make(abs)
		if err != nil {
			return nil, fmt.Errorf("container: tag %q: %w", tag, err)
		}
		result = append(result, inst)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract outside of any scope. Scoped bindings fail with
// *ScopeRequiredError; use Scope.Make for those.
func (c *Container) Make(abstract string) (any, error) {
	return c.resolve(abstract, nil)
}

// resolve runs one resolution. When an abstract is missing and the missing
// handler can supply it, the resolution is retried, at most once per abstract.
func (c *Container) resolve(abstract string, scope *Scope) (any, error) {
	var tried map[string]bool
	for {
		instance, built, err := c.resolveLocked(abstract, scope)
		c.fireAfterResolving(built)
		if err == nil {
			return instance, nil
		}

		var missing *MissingBindingError
		if !errors.As(err, &missing) || tried[missing.Abstract] {
			return nil, err
		}
		if tried == nil {
			tried = make(map[string]bool)
		}
		tried[missing.Abstract] = true
		if !c.loadMissing(missing.Abstract) {
			return nil, err
		}
	}
}

// resolveLocked runs one graph walk under the lock. On failure it still
// returns the constructions that stayed cached, so their AfterResolving
// callbacks are not lost.
func (c *Container) resolveLocked(abstract string, scope *Scope) (any, []built, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scope != nil && scope.closed {
		return nil, nil, ErrScopeClosed
	}
	r := &resolution{c: c, scope: scope}
	r.active.Store(true)
	defer r.active.Store(false)

	instance, err := r.make(abstract, "")
	if err != nil {
		return nil, slices.DeleteFunc(r.built, func(b built) bool { return !b.cached }), err
	}
	return instance, r.built, nil
}

// built records one construction for AfterResolving callbacks. cached is
// false for transients.
type built struct {
	abstract string
	instance any
	cached   bool
}

// resolution is the state of one top-level Make: the chain of abstracts
// under construction and what was built along the way.
type resolution struct {
	c     *Container
	scope *Scope
	stack []string
	built []built

	// active is true while the walk holds the lock; see ResolverKey.
	active atomic.Bool
}

// make resolves abstract. Caller holds c.mu.
func (r *resolution) make(abstract, neededBy string) (any, error) {
	c := r.c
	key := c.canonical(abstract)
	if key == ResolverKey {
		return &inlineResolver{r: r, consumer: neededBy}, nil
	}

	if inst, ok := c.instances[key]; ok {
		return inst, nil
	}

	var cache *scopeCache
	if r.scope != nil {
		cache = c.scopes[r.scope.id]
		if inst, ok := cache.instances[key]; ok {
			return inst, nil
		}
	}

	b, ok := c.bindings[key]
	if !ok {
		return nil, &MissingBindingError{Abstract: key, NeededBy: neededBy}
	}
	if b.lifetime == Scoped && cache == nil {
		return nil, &ScopeRequiredError{Abstract: key}
	}

	if i := slices.Index(r.stack, key); i >= 0 {
		path := append(slices.Clone(r.stack[i:]), key)
		return nil, &CyclicDependencyError{Path: path}
	}

	// key stays on the stack while its factory runs, so a factory resolving
	// through ResolverKey is still checked for cycles.
	r.stack = append(r.stack, key)
	instance, err := r.build(key, b)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, err
	}

	switch b.lifetime {
	case Singleton:
		c.instances[key] = instance
	case Scoped:
		cache.put(key, instance)
	}

	r.built = append(r.built, built{abstract: key, instance: instance, cached: b.lifetime != Transient})
	if ce := c.log.Check(zap.DebugLevel, "container: built"); ce != nil {
		fields := []zap.Field{zap.String("abstract", key), zap.Stringer("lifetime", b.lifetime)}
		if r.scope != nil {
			fields = append(fields, zap.String("scope", r.scope.ID()))
		}
		ce.Write(fields...)
	}
	return instance, nil
}

// build resolves b's needs, calls its factory and applies extenders.
func (r *resolution) build(key string, b *binding) (any, error) {
	args, err := r.arguments(key, b.concrete.Needs)
	if err != nil {
		return nil, err
	}
	if b.concrete.Factory == nil {
		return nil, &ResolutionError{Abstract: key, Cause: errNilFactory}
	}
	instance, err := b.concrete.Factory(args...)
	if err != nil {
		return nil, &ResolutionError{Abstract: key, Cause: err}
	}
	for _, ext := range r.c.extenders[key] {
		if instance, err = ext(instance); err != nil {
			return nil, &ResolutionError{Abstract: key, Cause: err}
		}
	}
	return instance, nil
}

// arguments resolves needs depth-first, in declaration order.
func (r *resolution) arguments(consumer string, needs []string) ([]any, error) {
	args := make([]any, len(needs))
	for i, need := range needs {
		if rule, ok := r.c.contextual[consumer][r.c.canonical(need)]; ok {
			if rule.literal {
				args[i] = rule.value
				continue
			}
			need = rule.target
		}
		v, err := r.make(need, consumer)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has a binding or an instance.
func (c *Container) Bound(abstract string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance || key == ResolverKey
}

// Resolved returns true if a singleton instance is cached for abstract.
func (c *Container) Resolved(abstract string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// LifetimeOf returns the lifetime of abstract's binding. Pre-built instances
// report Singleton.
func (c *Container) LifetimeOf(abstract string) (Lifetime, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	if b, ok := c.bindings[key]; ok {
		return b.lifetime, true
	}
	if _, ok := c.instances[key]; ok {
		return Singleton, true
	}
	return "", false
}

// Flush resets the entire container. Open scopes stay usable but lose their
// cached instances.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]any)
	c.aliases = make(map[string]string)
	c.extenders = make(map[string][]Extender)
	c.tags = make(map[string][]string)
	c.contextual = make(map[string]map[string]contextualRule)
	for _, sc := range c.scopes {
		sc.instances = make(map[string]any)
	}
}

// Bindings returns the sorted abstract keys that have a binding or instance.
func (c *Container) Bindings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// canonical resolves an alias to its canonical key. Caller holds mu.
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback fired with the fresh instance whenever an
// already-built singleton is rebound, replaced by Instance, or extended.
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	c.reboundCallbacks[key] = append(c.reboundCallbacks[key], cb)
}

// AfterResolving registers a callback fired for every instance the container
// builds. Cached hits do not fire it.
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

// OnMissing installs the handler consulted when an abstract has no binding.
// It returns true if it registered a binding for the abstract, in which case
// the resolution is retried. The handler runs without the container lock held.
func (c *Container) OnMissing(fn func(abstract string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missing = fn
}

func (c *Container) loadMissing(abstract string) bool {
	c.mu.Lock()
	fn := c.missing
	c.mu.Unlock()
	return fn != nil && fn(abstract)
}

func (c *Container) fireRebound(abstract string) {
	c.mu.Lock()
	cbs := slices.Clone(c.reboundCallbacks[c.canonical(abstract)])
	log := c.log
	c.mu.Unlock()
	if len(cbs) == 0 {
		return
	}

	instance, err := c.Make(abstract)
	if err != nil {
		log.Warn("container: rebuilding rebound instance", zap.String("abstract", abstract), zap.Error(err))
		return
	}
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(builds []built) {
	if len(builds) == 0 {
		return
	}
	c.mu.Lock()
	cbs := slices.Clone(c.afterResolving)
	c.mu.Unlock()
	for _, b := range builds {
		for _, cb := range cbs {
			cb(b.abstract, b.instance)
		}
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make on r and type-asserts the result.
//
//	repo, err := container.Resolve[*users.Repository](scope, "users.repository")
func Resolve[T any](r Resolver, abstract string) (T, error) {
	var zero T
	instance, err := r.Make(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%v]: [%s] resolved to %T", reflect.TypeFor[T](), abstract, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Meant for bootstrap code
// where a missing binding is a programming mistake.
func MustResolve[T any](r Resolver, abstract string) T {
	typed, err := Resolve[T](r, abstract)
	if err != nil {
		panic(err)
	}
	return typed
}
