package transform

import (
	"context"
	"maps"

	"github.com/matzehuels/depcollect/pkg/graph"
	"github.com/matzehuels/depcollect/pkg/version"
)

// Strategy picks the winning version of a conflicting artifact.
type Strategy int

const (
	// NearestWins keeps the version declared closest to the root; ties go
	// to the first declaration.
	NearestWins Strategy = iota
	// HighestWins keeps the newest version seen anywhere in the graph.
	HighestWins
)

func (s Strategy) String() string {
	if s == HighestWins {
		return "highest"
	}
	return "nearest"
}

// ParseStrategy maps "nearest" and "highest" to a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "nearest", "":
		return NearestWins, true
	case "highest":
		return HighestWins, true
	}
	return 0, false
}

// ConflictResolver reduces the graph to one version per artifact (by
// versionless id). The input graph is left untouched; the result is a
// pruned copy that keeps node sharing.
type ConflictResolver struct {
	Strategy Strategy
}

func (c ConflictResolver) Transform(ctx context.Context, root *graph.Edge) (*graph.Edge, error) {
	winners := c.winners(root)
	if err := ctx.Err(); err != nil {
		return root, err
	}

	copies := make(map[*graph.Node]*graph.Node)
	var copyNode func(n *graph.Node) *graph.Node
	copyNode = func(n *graph.Node) *graph.Node {
		if cp, ok := copies[n]; ok {
			return cp
		}
		cp := graph.NewNode(n.Aliases, n.Repositories)
		copies[n] = cp
		for _, e := range n.Children {
			if e.Dependency == nil || winners[e.Dependency.Artifact.VersionlessID()] != e.Version {
				continue
			}
			ec := *e
			ec.Target = copyNode(e.Target)
			cp.Append(&ec)
		}
		return cp
	}

	out := *root
	out.Target = copyNode(root.Target)
	return &out, nil
}

// winners maps each versionless id to its winning version. Only edges that
// win are descended into, so a losing version's subtree never contributes a
// winner. Highest-wins repeats the walk until the winner map is stable.
func (c ConflictResolver) winners(root *graph.Edge) map[string]string {
	if c.Strategy != HighestWins {
		return c.walk(root, nil)
	}
	var prev map[string]string
	for range maxPasses {
		w := c.walk(root, prev)
		if maps.Equal(w, prev) {
			return w
		}
		prev = w
	}
	return prev
}

const maxPasses = 16

// walk runs one breadth-first pass. For nearest-wins, an edge is entered
// when it holds the id's winner so far; for highest-wins, when it holds the
// winner of the previous pass (or prev has no opinion yet).
func (c ConflictResolver) walk(root *graph.Edge, prev map[string]string) map[string]string {
	winners := make(map[string]string)
	if root.Dependency != nil {
		winners[root.Dependency.Artifact.VersionlessID()] = root.Version
	}
	enter := func(id, v string) bool {
		if c.Strategy != HighestWins {
			return winners[id] == v
		}
		p, ok := prev[id]
		return !ok || p == v
	}

	seen := map[*graph.Node]bool{root.Target: true}
	queue := []*graph.Node{root.Target}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range n.Children {
			id := e.Dependency.Artifact.VersionlessID()
			cur, ok := winners[id]
			switch {
			case !ok:
				winners[id] = e.Version
			case c.Strategy == HighestWins && version.Compare(version.Parse(e.Version), version.Parse(cur)) > 0:
				winners[id] = e.Version
			}
			if enter(id, e.Version) && !seen[e.Target] {
				seen[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}
	return winners
}
