package graph

import (
	"slices"
	"testing"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/repository"
)

func edgeTo(coord string, target *Node) *Edge {
	d := artifact.NewDependency(artifact.MustParse(coord), "")
	return NewEdge(&d, target)
}

// diamond builds root -> a -> c, root -> b -> c with c shared.
func diamond() (root *Edge, c *Node) {
	c = NewNode(nil, nil)
	a, b := NewNode(nil, nil), NewNode(nil, nil)
	a.Append(edgeTo("g:c:1.0", c))
	b.Append(edgeTo("g:c:1.0", c))

	r := NewNode(nil, []repository.RemoteRepository{repository.Central})
	r.Append(edgeTo("g:a:1.0", a))
	r.Append(edgeTo("g:b:1.0", b))
	return edgeTo("g:root:1.0", r), c
}

func TestNewEdge(t *testing.T) {
	e := edgeTo("g:a:jar:tests:1.0", NewNode(nil, nil))
	if e.Version != "1.0" || e.Scope != artifact.ScopeCompile {
		t.Errorf("NewEdge() version=%q scope=%q", e.Version, e.Scope)
	}
	if !e.IsRoot() || e.Managed() || e.Optional() {
		t.Error("fresh edge should be a root, unmanaged and not optional")
	}
	if e.String() != "g:a:jar:tests:1.0 (compile)" {
		t.Errorf("String() = %q", e.String())
	}

	synthetic := NewEdge(nil, NewNode(nil, nil))
	if synthetic.String() != "(root)" || synthetic.Artifact().Name != "" {
		t.Errorf("synthetic root = %q", synthetic)
	}

	defer func() {
		if recover() == nil {
			t.Error("NewEdge without target should panic")
		}
	}()
	NewEdge(nil, nil)
}

func TestAppendSetsSource(t *testing.T) {
	root, c := diamond()
	for _, e := range root.Target.Children {
		if e.Source != root.Target {
			t.Errorf("%s source not set", e)
		}
		if e.Target.Children[0].Target != c {
			t.Errorf("%s does not reach the shared node", e)
		}
	}
}

func TestWalkEntersSharedNodesOnce(t *testing.T) {
	root, _ := diamond()
	c2 := NewNode(nil, nil)
	root.Target.Children[0].Target.Children[0].Target.Append(edgeTo("g:d:1.0", c2))

	var visited []string
	Walk(root, func(e *Edge, depth int) bool {
		visited = append(visited, e.Artifact().Name)
		return true
	})
	want := []string{"root", "a", "c", "d", "b", "c"}
	if !slices.Equal(visited, want) {
		t.Errorf("Walk order = %v, want %v", visited, want)
	}

	var pruned []string
	Walk(root, func(e *Edge, depth int) bool {
		pruned = append(pruned, e.Artifact().Name)
		return e.Artifact().Name != "a"
	})
	// c is still entered through b.
	if !slices.Equal(pruned, []string{"root", "a", "b", "c", "d"}) {
		t.Errorf("pruned walk = %v", pruned)
	}

	Walk(nil, func(*Edge, int) bool { t.Error("visited nil root"); return true })
}

func TestSummarize(t *testing.T) {
	root, _ := diamond()
	s := Summarize(root)
	want := Stats{Nodes: 4, Edges: 4, MaxDepth: 2, Shared: 1, Leaves: 1}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}
}

func TestFlatten(t *testing.T) {
	root, _ := diamond()
	// A distinct node with the same coordinates as the shared c, reached
	// first in breadth-first order.
	root.Target.Append(edgeTo("g:c:1.0", NewNode(nil, nil)))

	g := Flatten(root)
	if g.NodeCount() != 5 || g.EdgeCount() != 5 {
		t.Fatalf("Flatten() nodes=%d edges=%d", g.NodeCount(), g.EdgeCount())
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	c, ok := g.Node("g:c:1.0")
	if !ok || c.Row != 1 {
		t.Errorf("g:c:1.0 = %+v, want row 1", c)
	}
	if _, ok := g.Node("g:c:1.0#2"); !ok {
		t.Error("distinct node with equal coordinates should get a suffixed ID")
	}
	if parents := g.Parents("g:c:1.0#2"); !slices.Equal(parents, []string{"g:a:1.0", "g:b:1.0"}) {
		t.Errorf("parents of the shared node = %v", parents)
	}
	rootNode, _ := g.Node("g:root:1.0")
	if rootNode.Meta["repositories"] == nil {
		t.Error("root node should carry its repositories")
	}
}

func TestFlattenSyntheticRoot(t *testing.T) {
	n := NewNode(nil, nil)
	n.Append(edgeTo("g:a:1.0", NewNode(nil, nil)))
	g := Flatten(NewEdge(nil, n))
	if _, ok := g.Node(RootID); !ok {
		t.Errorf("synthetic root should be %q", RootID)
	}
	if Flatten(nil).NodeCount() != 0 {
		t.Error("Flatten(nil) should be empty")
	}
}
