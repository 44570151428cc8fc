package container

import (
	"errors"
	"fmt"
	"strings"
)

// ErrScopeClosed is returned when resolving through a Scope after Close.
var ErrScopeClosed = errors.New("container: scope is closed")

// MissingBindingError is returned when an abstract has no binding.
type MissingBindingError struct {
	Abstract string
	// NeededBy is the abstract whose dependency list named Abstract, if any.
	NeededBy string
}

func (e *MissingBindingError) Error() string {
	if e.NeededBy != "" {
		return fmt.Sprintf("container: no binding registered for [%s] (needed by [%s])", e.Abstract, e.NeededBy)
	}
	return fmt.Sprintf("container: no binding registered for [%s]", e.Abstract)
}

// CyclicDependencyError is returned when an abstract is reached again while
// it is still being built.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return "container: cyclic dependency " + strings.Join(e.Path, " -> ")
}

// ScopeRequiredError is returned when a scoped binding is resolved from the
// root container instead of a Scope.
type ScopeRequiredError struct {
	Abstract string
}

func (e *ScopeRequiredError) Error() string {
	return fmt.Sprintf("container: [%s] is scoped and must be resolved through a scope", e.Abstract)
}

// ResolutionError wraps a failure raised by a factory or an extender.
type ResolutionError struct {
	Abstract string
	Cause    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("container: building [%s]: %v", e.Abstract, e.Cause)
}

func (e *ResolutionError) Unwrap() error { return e.Cause }
