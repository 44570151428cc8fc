package container

// Lifetime controls how long a resolved instance is reused.
type Lifetime string

const (
	// Transient builds a new instance on every resolution. It is the default.
	Transient Lifetime = "transient"

	// Singleton builds one instance per container, lazily, and caches it.
	Singleton Lifetime = "singleton"

	// Scoped builds one instance per Scope. Scoped bindings can only be
	// resolved through a Scope.
	Scoped Lifetime = "scoped"
)

func (l Lifetime) String() string { return string(l) }

// Valid reports whether l is one of the known lifetimes.
func (l Lifetime) Valid() bool {
	switch l {
	case Transient, Singleton, Scoped:
		return true
	}
	return false
}
