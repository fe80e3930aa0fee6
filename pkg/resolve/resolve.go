// Package resolve defines the collaborators dependency collection consults:
// a [VersionRangeResolver] that expands version expressions into concrete
// versions and a [DescriptorReader] that reads an artifact's declared
// dependencies.
//
// Implementations live elsewhere (pkg/catalog for a local TOML catalog,
// pkg/integrations/maven for Maven-layout HTTP repositories). Collection
// calls them through a per-invocation memoization pool, so an
// implementation sees each distinct request at most once per collection.
package resolve

import (
	"context"

	"github.com/google/uuid"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/repository"
)

// Trace links a request back to the request that caused it.
type Trace struct {
	ID     string
	Parent *Trace
	Data   any // e.g. the dependency being expanded
}

// NewTrace starts a new trace chain with a random ID.
func NewTrace(data any) *Trace {
	return &Trace{ID: uuid.NewString(), Data: data}
}

// Child returns a trace whose parent is t. A nil t starts a new chain.
func (t *Trace) Child(data any) *Trace {
	if t == nil {
		return NewTrace(data)
	}
	return &Trace{ID: t.ID, Parent: t, Data: data}
}

// Depth returns the number of ancestors of t.
func (t *Trace) Depth() int {
	n := 0
	for p := t.Parent; p != nil; p = p.Parent {
		n++
	}
	return n
}

// VersionRangeRequest asks which concrete versions satisfy the version
// expression in Artifact.Version.
type VersionRangeRequest struct {
	Artifact       artifact.Artifact
	Repositories   []repository.RemoteRepository
	RequestContext string
	Trace          *Trace
}

// VersionRangeResult lists matching versions in ascending order.
type VersionRangeResult struct {
	Versions []string

	// Repositories maps a version to the repository supplying it. A
	// version without an entry was not pinned to a repository.
	Repositories map[string]repository.Repository

	// Constraint is the expression that was resolved.
	Constraint string
}

// Repository returns the repository supplying v, or nil.
func (r *VersionRangeResult) Repository(v string) repository.Repository {
	if r.Repositories == nil {
		return nil
	}
	return r.Repositories[v]
}

// Highest returns the last (newest) version, or "" when there is none.
func (r *VersionRangeResult) Highest() string {
	if len(r.Versions) == 0 {
		return ""
	}
	return r.Versions[len(r.Versions)-1]
}

// VersionRangeResolver expands version expressions.
type VersionRangeResolver interface {
	// ResolveVersionRange returns the versions matching the request. An
	// expression that matches nothing yields an empty Versions list, not an
	// error; the caller decides whether that is fatal.
	ResolveVersionRange(ctx context.Context, req VersionRangeRequest) (*VersionRangeResult, error)
}

// DescriptorRequest asks for the descriptor of a concrete artifact.
type DescriptorRequest struct {
	Artifact       artifact.Artifact
	Repositories   []repository.RemoteRepository
	RequestContext string
	Trace          *Trace
}

// DescriptorResult is what an artifact's descriptor declares.
type DescriptorResult struct {
	// Artifact is the artifact that was read. It may carry properties the
	// request did not have.
	Artifact            artifact.Artifact
	Dependencies        []artifact.Dependency
	ManagedDependencies []artifact.Dependency
	Repositories        []repository.RemoteRepository
	Aliases             []artifact.Artifact

	// Relocations lists the artifacts that were relocated, oldest first, to
	// arrive at Artifact. A non-empty list means Artifact is the new
	// coordinate and its own descriptor still has to be read.
	Relocations []artifact.Artifact
}

// Relocated reports whether the descriptor redirects elsewhere.
func (r *DescriptorResult) Relocated() bool { return len(r.Relocations) > 0 }

// DescriptorReader reads artifact descriptors.
type DescriptorReader interface {
	ReadDescriptor(ctx context.Context, req DescriptorRequest) (*DescriptorResult, error)
}

// ResolverFunc adapts a function to VersionRangeResolver.
type ResolverFunc func(ctx context.Context, req VersionRangeRequest) (*VersionRangeResult, error)

func (f ResolverFunc) ResolveVersionRange(ctx context.Context, req VersionRangeRequest) (*VersionRangeResult, error) {
	return f(ctx, req)
}

// ReaderFunc adapts a function to DescriptorReader.
type ReaderFunc func(ctx context.Context, req DescriptorRequest) (*DescriptorResult, error)

func (f ReaderFunc) ReadDescriptor(ctx context.Context, req DescriptorRequest) (*DescriptorResult, error) {
	return f(ctx, req)
}
