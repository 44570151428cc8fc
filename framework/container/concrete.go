package container

import (
	"errors"
	"fmt"
	"reflect"
)

// Factory builds a concrete value from its resolved dependencies. args holds
// one value per entry of Concrete.Needs, in the same order.
type Factory func(args ...any) (any, error)

// Concrete is the construction recipe stored by a binding: the abstracts it
// depends on and the factory that assembles them.
type Concrete struct {
	Needs   []string
	Factory Factory
}

var errNilFactory = errors.New("nil factory")

// Using builds a Concrete from a raw factory and its dependency list.
//
//	c.Bind("greeter", container.Using(func(args ...any) (any, error) {
//	    return &Greeter{Name: args[0].(string)}, nil
//	}, "name"))
func Using(factory Factory, needs ...string) Concrete {
	return Concrete{Needs: needs, Factory: factory}
}

// Value is a Concrete that always yields v.
func Value(v any) Concrete {
	return Using(func(...any) (any, error) { return v, nil })
}

// Func adapts a zero-argument constructor.
func Func[R any](fn func() (R, error)) Concrete {
	return Using(func(...any) (any, error) { return fn() })
}

// Func1 adapts a one-argument constructor. a names the abstract passed as A.
//
//	c.Singleton("users.repository", container.Func1(users.NewRepositoryFromConfig, "config"))
func Func1[A, R any](fn func(A) (R, error), a string) Concrete {
	return Using(func(args ...any) (any, error) {
		av, err := arg[A](args, 0, a)
		if err != nil {
			return nil, err
		}
		return fn(av)
	}, a)
}

// Func2 adapts a two-argument constructor.
func Func2[A, B, R any](fn func(A, B) (R, error), a, b string) Concrete {
	return Using(func(args ...any) (any, error) {
		av, err := arg[A](args, 0, a)
		if err != nil {
			return nil, err
		}
		bv, err := arg[B](args, 1, b)
		if err != nil {
			return nil, err
		}
		return fn(av, bv)
	}, a, b)
}

// Func3 adapts a three-argument constructor.
func Func3[A, B, C, R any](fn func(A, B, C) (R, error), a, b, c string) Concrete {
	return Using(func(args ...any) (any, error) {
		av, err := arg[A](args, 0, a)
		if err != nil {
			return nil, err
		}
		bv, err := arg[B](args, 1, b)
		if err != nil {
			return nil, err
		}
		cv, err := arg[C](args, 2, c)
		if err != nil {
			return nil, err
		}
		return fn(av, bv, cv)
	}, a, b, c)
}

func arg[T any](args []any, i int, abstract string) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, fmt.Errorf("dependency [%s] was not supplied", abstract)
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("dependency [%s] is %T, want %v", abstract, args[i], reflect.TypeFor[T]())
	}
	return v, nil
}
