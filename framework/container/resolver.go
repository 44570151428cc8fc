package container

import "fmt"

// ResolverKey is the reserved abstract a factory lists in its Needs to get a
// Resolver of its own. While the factory runs, that Resolver resolves inside
// the same walk: the lock is not taken again, the scope is the caller's and
// cycles are still detected. Once the walk is over it behaves like the
// container's (or scope's) Make.
//
//	c.Bind("report", container.Func1(func(r container.Resolver) (*Report, error) {
//	    src, err := r.Make("report.source." + kind)
//	    ...
//	}, container.ResolverKey))
//
// The Resolver must only be used from the factory's own goroutine. Nothing
// can be bound under ResolverKey.
const ResolverKey = "container"

type inlineResolver struct {
	r        *resolution
	consumer string
}

func (ir *inlineResolver) Make(abstract string) (any, error) {
	if ir.r.active.Load() {
		return ir.r.make(abstract, ir.consumer)
	}
	return ir.r.c.resolve(abstract, ir.r.scope)
}

func reserved(abstract string) {
	if abstract == ResolverKey {
		panic(fmt.Sprintf("container: [%s] is reserved", ResolverKey))
	}
}
