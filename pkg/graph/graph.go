// Package graph holds the dependency graph produced by collection.
//
// A collected graph is a DAG of [Node] values connected by [Edge] values.
// Nodes are identity entities: two nodes built from the same coordinates are
// distinct unless collection deliberately reused one, and a node reached by
// several parents (a diamond) appears as the target of several edges.
// Comparison is by pointer.
//
// The graph is built by a single goroutine and never mutated after
// collection returns, so it may be read concurrently afterwards.
package graph

import (
	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/repository"
)

// Node is one resolved artifact in the graph.
type Node struct {
	// Aliases are artifacts interchangeable with this node, e.g. the
	// coordinates a descriptor declares as equivalent.
	Aliases []artifact.Artifact

	// Repositories the node's subtree may be resolved against.
	Repositories []repository.RemoteRepository

	// Children are the outgoing edges in declaration order.
	Children []*Edge
}

// NewNode creates a node with no children.
func NewNode(aliases []artifact.Artifact, repos []repository.RemoteRepository) *Node {
	return &Node{Aliases: aliases, Repositories: repos}
}

// Append attaches e as the last child of n and sets its source.
func (n *Node) Append(e *Edge) {
	e.Source = n
	n.Children = append(n.Children, e)
}

// Edge connects a source node to the node its dependency resolved to.
type Edge struct {
	Source *Node // nil for the root edge
	Target *Node

	// Dependency is the fully pinned dependency. It is nil only on the
	// synthetic root edge of a collection without a root artifact.
	Dependency *artifact.Dependency

	Scope             string
	PremanagedScope   string // scope before management overrode it
	PremanagedVersion string // version before management overrode it
	VersionConstraint string // the version expression that was resolved
	Version           string // the concrete version chosen

	// Relocations lists the coordinates the dependency was relocated
	// through, oldest first.
	Relocations []artifact.Artifact

	RequestContext string
}

// NewEdge creates an edge to target. dep may be nil only for a root edge.
func NewEdge(dep *artifact.Dependency, target *Node) *Edge {
	if target == nil {
		panic("graph: edge without target node")
	}
	e := &Edge{Dependency: dep, Target: target}
	if dep != nil {
		e.Scope = dep.Scope
		e.Version = dep.Artifact.Version
	}
	return e
}

// Artifact returns the edge's artifact, or the zero value for a synthetic
// root edge.
func (e *Edge) Artifact() artifact.Artifact {
	if e.Dependency == nil {
		return artifact.Artifact{}
	}
	return e.Dependency.Artifact
}

// Optional reports whether the edge's dependency is optional.
func (e *Edge) Optional() bool { return e.Dependency != nil && e.Dependency.Optional }

// IsRoot reports whether the edge has no source node.
func (e *Edge) IsRoot() bool { return e.Source == nil }

// Managed reports whether dependency management changed the version or scope.
func (e *Edge) Managed() bool { return e.PremanagedVersion != "" || e.PremanagedScope != "" }

func (e *Edge) String() string {
	if e.Dependency == nil {
		return "(root)"
	}
	return e.Dependency.String()
}
