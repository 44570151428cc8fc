package container_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
)

// ── stubs ─────────────────────────────────────────────────────────────────────

type unitOfWork struct {
	closed *[]string
	name   string
	err    error
}

func (u *unitOfWork) Close() error {
	*u.closed = append(*u.closed, u.name)
	return u.err
}

// ── Scoped lifetime ───────────────────────────────────────────────────────────

func TestScoped_SameScopeSameInstance(t *testing.T) {
	c := container.New()
	c.Scoped("repo", container.Func(newRepo))

	scope := c.NewScope()
	defer scope.Close()

	a := container.MustResolve[*repo](scope, "repo")
	b := container.MustResolve[*repo](scope, "repo")
	assert.Same(t, a, b)
}

func TestScoped_DifferentScopesDistinct(t *testing.T) {
	c := container.New()
	c.Scoped("repo", container.Func(newRepo))

	s1, s2 := c.NewScope(), c.NewScope()
	defer s1.Close()
	defer s2.Close()

	a := container.MustResolve[*repo](s1, "repo")
	b := container.MustResolve[*repo](s2, "repo")
	assert.NotSame(t, a, b)
	assert.NotEqual(t, s1.ID(), s2.ID())
}

func TestScoped_RootMakeRequiresScope(t *testing.T) {
	c := container.New()
	c.Scoped("repo", container.Func(newRepo))

	_, err := c.Make("repo")

	var scopeErr *container.ScopeRequiredError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, "repo", scopeErr.Abstract)
}

func TestScoped_TransientConsumerSharesScopedDependency(t *testing.T) {
	c := container.New()
	c.Singleton("repo", container.Func(newRepo))
	c.Scoped("mailer", container.Func(newMailer))
	c.Bind("service", container.Func2(newService, "repo", "mailer"))

	scope := c.NewScope()
	defer scope.Close()

	s1 := container.MustResolve[*service](scope, "service")
	s2 := container.MustResolve[*service](scope, "service")
	assert.NotSame(t, s1, s2)
	assert.Same(t, s1.mailer, s2.mailer)
	assert.Same(t, s1.repo, container.MustResolve[*repo](c, "repo"))

	other := c.NewScope()
	defer other.Close()
	s3 := container.MustResolve[*service](other, "service")
	assert.NotSame(t, s1.mailer, s3.mailer)
	assert.Same(t, s1.repo, s3.repo)
}

func TestScoped_SingletonsServedThroughScope(t *testing.T) {
	c := container.New()
	c.Singleton("repo", container.Func(newRepo))
	scope := c.NewScope()
	defer scope.Close()

	assert.Same(t,
		container.MustResolve[*repo](c, "repo"),
		container.MustResolve[*repo](scope, "repo"))
}

func TestScoped_RebindDiscardsScopedInstances(t *testing.T) {
	c := container.New()
	c.Scoped("repo", container.Func(newRepo))
	scope := c.NewScope()
	defer scope.Close()

	before := container.MustResolve[*repo](scope, "repo")
	c.Scoped("repo", container.Func(newRepo))
	after := container.MustResolve[*repo](scope, "repo")

	assert.NotSame(t, before, after)
}

func TestScoped_CycleIsDetectedPerScope(t *testing.T) {
	c := container.New()
	c.Scoped("A", container.Using(func(...any) (any, error) { return "a", nil }, "B"))
	c.Scoped("B", container.Using(func(...any) (any, error) { return "b", nil }, "A"))
	scope := c.NewScope()
	defer scope.Close()

	_, err := scope.Make("A")
	var cycle *container.CyclicDependencyError
	assert.ErrorAs(t, err, &cycle)
}

// ── Scope instances ───────────────────────────────────────────────────────────

func TestScope_InstanceVisibleOnlyInScope(t *testing.T) {
	c := container.New()
	c.Scoped("greeting", container.Func1(func(id string) (string, error) {
		return "hello " + id, nil
	}, "request.id"))

	s1, s2 := c.NewScope(), c.NewScope()
	defer s1.Close()
	defer s2.Close()
	require.NoError(t, s1.Instance("request.id", "r1"))
	require.NoError(t, s2.Instance("request.id", "r2"))

	assert.Equal(t, "hello r1", container.MustResolve[string](s1, "greeting"))
	assert.Equal(t, "hello r2", container.MustResolve[string](s2, "greeting"))

	_, err := c.Make("request.id")
	var missing *container.MissingBindingError
	assert.ErrorAs(t, err, &missing)
}

// ── Close ─────────────────────────────────────────────────────────────────────

func TestScope_CloseReleasesInReverseOrder(t *testing.T) {
	var closed []string
	uow := func(name string) container.Concrete {
		return container.Func(func() (*unitOfWork, error) {
			return &unitOfWork{closed: &closed, name: name}, nil
		})
	}

	c := container.New()
	c.Scoped("first", uow("first"))
	c.Scoped("second", uow("second"))
	scope := c.NewScope()

	_ = container.MustResolve[*unitOfWork](scope, "first")
	_ = container.MustResolve[*unitOfWork](scope, "second")
	require.NoError(t, scope.Close())

	assert.Equal(t, []string{"second", "first"}, closed)
}

func TestScope_CloseJoinsErrors(t *testing.T) {
	var closed []string
	boom := errors.New("boom")
	c := container.New()
	c.Scoped("uow", container.Func(func() (*unitOfWork, error) {
		return &unitOfWork{closed: &closed, name: "uow", err: boom}, nil
	}))
	scope := c.NewScope()
	_ = container.MustResolve[*unitOfWork](scope, "uow")

	err := scope.Close()
	assert.ErrorIs(t, err, boom)
}

func TestScope_DoesNotCloseExternalInstances(t *testing.T) {
	var closed []string
	c := container.New()
	scope := c.NewScope()
	require.NoError(t, scope.Instance("uow", &unitOfWork{closed: &closed, name: "external"}))

	require.NoError(t, scope.Close())
	assert.Empty(t, closed)
}

func TestScope_MakeAfterCloseFails(t *testing.T) {
	c := container.New()
	c.Scoped("repo", container.Func(newRepo))
	scope := c.NewScope()
	require.NoError(t, scope.Close())
	require.NoError(t, scope.Close(), "closing twice is a no-op")

	_, err := scope.Make("repo")
	assert.ErrorIs(t, err, container.ErrScopeClosed)
	assert.ErrorIs(t, scope.Instance("x", 1), container.ErrScopeClosed)
}

func TestScope_SurvivesFlush(t *testing.T) {
	c := container.New()
	c.Scoped("repo", container.Func(newRepo))
	scope := c.NewScope()
	defer scope.Close()
	_ = container.MustResolve[*repo](scope, "repo")

	c.Flush()
	c.Scoped("repo", container.Func(newRepo))

	_, err := scope.Make("repo")
	assert.NoError(t, err)
}

// ── context ───────────────────────────────────────────────────────────────────

func TestScope_Context(t *testing.T) {
	c := container.New()
	scope := c.NewScope()
	defer scope.Close()

	ctx := container.WithScope(context.Background(), scope)
	got, ok := container.ScopeFrom(ctx)
	require.True(t, ok)
	assert.Same(t, scope, got)
	assert.Same(t, c, got.Container())

	_, ok = container.ScopeFrom(context.Background())
	assert.False(t, ok)
}
