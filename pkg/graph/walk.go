package graph

import (
	"fmt"

	"github.com/matzehuels/depcollect/pkg/dag"
)

// Visitor is called for every edge reached by Walk. Returning false skips
// the edge's target subtree.
type Visitor func(e *Edge, depth int) bool

// Walk visits root and its descendants depth-first in declaration order.
// A node reached through several edges has each edge visited, but its
// children are entered only the first time.
func Walk(root *Edge, visit Visitor) {
	if root == nil {
		return
	}
	seen := make(map[*Node]bool)
	var walk func(e *Edge, depth int)
	walk = func(e *Edge, depth int) {
		if !visit(e, depth) || seen[e.Target] {
			return
		}
		seen[e.Target] = true
		for _, c := range e.Target.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
}

// Stats summarizes a collected graph.
type Stats struct {
	Nodes    int // distinct nodes, the root node included
	Edges    int // edges below the root edge
	MaxDepth int // length of the longest visited path
	Shared   int // nodes reached by more than one edge
	Leaves   int // nodes without children
}

// Summarize computes Stats for the graph under root.
func Summarize(root *Edge) Stats {
	var s Stats
	incoming := make(map[*Node]int)
	Walk(root, func(e *Edge, depth int) bool {
		incoming[e.Target]++
		if depth > 0 {
			s.Edges++
		}
		s.MaxDepth = max(s.MaxDepth, depth)
		return true
	})
	s.Nodes = len(incoming)
	for n, c := range incoming {
		if c > 1 && n != root.Target {
			s.Shared++
		}
		if len(n.Children) == 0 {
			s.Leaves++
		}
	}
	return s
}

// RootID is the dag ID used for the root node when no root artifact exists.
const RootID = "__root__"

// Flatten converts the graph into an ID-addressed DAG for export. Node IDs
// are artifact coordinates; distinct nodes sharing a coordinate get a "#n"
// suffix. Rows hold the shortest depth from the root.
func Flatten(root *Edge) *dag.DAG {
	g := dag.New(nil)
	if root == nil {
		return g
	}

	ids := make(map[*Node]string)
	used := make(map[string]int)
	idFor := func(e *Edge) string {
		if id, ok := ids[e.Target]; ok {
			return id
		}
		base := RootID
		if e.Dependency != nil {
			base = e.Dependency.Artifact.String()
		}
		id := base
		if n := used[base]; n > 0 {
			id = fmt.Sprintf("%s#%d", base, n+1)
		}
		used[base]++
		ids[e.Target] = id
		return id
	}

	// Breadth-first so the first visit to a node is its shallowest.
	type item struct {
		e     *Edge
		depth int
	}
	queue := []item{{root, 0}}
	_ = g.AddNode(dag.Node{ID: idFor(root), Row: 0, Meta: nodeMeta(root)})
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		from := ids[it.e.Target]
		for _, c := range it.e.Target.Children {
			_, known := ids[c.Target]
			to := idFor(c)
			if !known {
				_ = g.AddNode(dag.Node{ID: to, Row: it.depth + 1, Meta: nodeMeta(c)})
				queue = append(queue, item{c, it.depth + 1})
			}
			_ = g.AddEdge(dag.Edge{From: from, To: to, Meta: edgeMeta(c)})
		}
	}
	return g
}

func nodeMeta(e *Edge) dag.Metadata {
	m := dag.Metadata{}
	if e.Dependency == nil {
		return m
	}
	a := e.Dependency.Artifact
	m["group"] = a.Group
	m["name"] = a.Name
	m["version"] = a.Version
	m["extension"] = a.Extension
	if a.Classifier != "" {
		m["classifier"] = a.Classifier
	}
	if len(e.Target.Aliases) > 0 {
		aliases := make([]string, len(e.Target.Aliases))
		for i, al := range e.Target.Aliases {
			aliases[i] = al.String()
		}
		m["aliases"] = aliases
	}
	if len(e.Target.Repositories) > 0 {
		m["repositories"] = repoIDs(e.Target)
	}
	return m
}

func repoIDs(n *Node) []string {
	ids := make([]string, len(n.Repositories))
	for i, r := range n.Repositories {
		ids[i] = r.ID
	}
	return ids
}

func edgeMeta(e *Edge) dag.Metadata {
	m := dag.Metadata{"scope": e.Scope, "version": e.Version}
	if e.Optional() {
		m["optional"] = true
	}
	if e.VersionConstraint != "" && e.VersionConstraint != e.Version {
		m["constraint"] = e.VersionConstraint
	}
	if e.PremanagedVersion != "" {
		m["premanaged_version"] = e.PremanagedVersion
	}
	if e.PremanagedScope != "" {
		m["premanaged_scope"] = e.PremanagedScope
	}
	if len(e.Relocations) > 0 {
		rel := make([]string, len(e.Relocations))
		for i, r := range e.Relocations {
			rel[i] = r.String()
		}
		m["relocations"] = rel
	}
	return m
}
