package collect

import (
	"fmt"
	"reflect"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

// Context is what a policy sees when deriving the policy for the children
// of a dependency.
type Context struct {
	Session *Session

	// Dependency is the dependency whose children are about to be
	// processed, or nil when deriving for the top-level dependencies of a
	// collection without a root.
	Dependency *artifact.Dependency

	// ManagedDependencies are the managed entries declared by Dependency's
	// descriptor (or by the request, at the root).
	ManagedDependencies []artifact.Dependency
}

// Selector decides whether a dependency is included in the graph.
type Selector interface {
	Select(dep artifact.Dependency) bool
	DeriveChild(ctx Context) Selector
}

// Manager applies dependency management to a dependency before it is
// resolved.
type Manager interface {
	// Manage returns the overrides for dep, or nil when nothing applies.
	Manage(dep artifact.Dependency) *Management
	DeriveChild(ctx Context) Manager
}

// Traverser decides whether the children of a dependency are expanded.
type Traverser interface {
	Traverse(dep artifact.Dependency) bool
	DeriveChild(ctx Context) Traverser
}

// Management lists the overrides a Manager applies. Nil fields leave the
// dependency unchanged.
type Management struct {
	Version    *string
	Scope      *string
	Properties map[string]string // replaces the artifact's properties
	Exclusions []artifact.Exclusion
}

// Keyed is implemented by policies that can describe their complete state as
// a string. Two policies with equal keys must make identical decisions, so
// collection may reuse a node expanded under one for the other.
type Keyed interface {
	PolicyKey() string
}

// PolicyKey describes p for node-reuse keys. Keyed policies contribute their
// own key; reference-typed policies without one are keyed by address, so two
// distinct instances never share a key. Callers building keys from the result
// must keep p reachable while the key is in use.
func PolicyKey(p any) string {
	if p == nil {
		return "<nil>"
	}
	if k, ok := p.(Keyed); ok {
		return fmt.Sprintf("%T{%s}", p, k.PolicyKey())
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return fmt.Sprintf("%T@%x", p, v.Pointer())
	}
	return fmt.Sprintf("%T%+v", p, p)
}

// Default policies used for nil session fields.

type acceptAll struct{}

func (acceptAll) Select(artifact.Dependency) bool { return true }
func (s acceptAll) DeriveChild(Context) Selector  { return s }
func (acceptAll) PolicyKey() string               { return "" }

type noManagement struct{}

func (noManagement) Manage(artifact.Dependency) *Management { return nil }
func (m noManagement) DeriveChild(Context) Manager          { return m }
func (noManagement) PolicyKey() string                      { return "" }

type traverseAll struct{}

func (traverseAll) Traverse(artifact.Dependency) bool { return true }
func (t traverseAll) DeriveChild(Context) Traverser   { return t }
func (traverseAll) PolicyKey() string                 { return "" }
