package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/graph"
)

func link(from *graph.Node, coord, scope string, to *graph.Node) *graph.Edge {
	d := artifact.NewDependency(artifact.MustParse(coord), scope)
	e := graph.NewEdge(&d, to)
	from.Append(e)
	return e
}

// sample builds app -> lib -> core, app -> util -> core.
func sample() *graph.Edge {
	app, lib, util, core := graph.NewNode(nil, nil), graph.NewNode(nil, nil), graph.NewNode(nil, nil), graph.NewNode(nil, nil)
	link(lib, "org.example:core:2.0", artifact.ScopeRuntime, core)
	link(util, "org.example:core:2.0", artifact.ScopeRuntime, core)
	core.Append(graph.NewEdge(depPtr("org.example:leaf:1.0"), graph.NewNode(nil, nil)))

	e := link(app, "org.example:lib:1.4", "", lib)
	e.VersionConstraint = "[1.0,2.0)"
	e.PremanagedVersion = "1.2"
	u := link(app, "org.example:util:1.0", "", util)
	u.Dependency.Optional = true

	root := artifact.NewDependency(artifact.MustParse("org.example:app:1.0"), "")
	return graph.NewEdge(&root, app)
}

func depPtr(coord string) *artifact.Dependency {
	d := artifact.NewDependency(artifact.MustParse(coord), "")
	return &d
}

func TestWriteTree(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTree(&buf, sample(), TreeOptions{}); err != nil {
		t.Fatal(err)
	}
	want := `org.example:app:1.0
  org.example:lib:1.4 [compile]
    org.example:core:2.0 [runtime]
      org.example:leaf:1.0 [compile]
  org.example:util:1.0 [compile, optional]
    org.example:core:2.0 [runtime] (*)
`
	if buf.String() != want {
		t.Errorf("WriteTree() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestLineVerbose(t *testing.T) {
	lib := sample().Target.Children[0]
	got := Line(lib, true)
	want := "org.example:lib:1.4 [compile] (version managed from 1.2) (from [1.0,2.0))"
	if got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
	if Line(graph.NewEdge(nil, graph.NewNode(nil, nil)), false) != graph.RootID {
		t.Error("synthetic root should print its ID")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var first bytes.Buffer
	if err := WriteGraph(sample(), &first); err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := json.Unmarshal(first.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["root"] != "org.example:app:1.0" {
		t.Errorf("root = %v", doc["root"])
	}

	g, err := ReadJSON(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if g.NodeCount() != 5 || g.EdgeCount() != 5 {
		t.Errorf("nodes=%d edges=%d", g.NodeCount(), g.EdgeCount())
	}

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(g, path); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second) {
		t.Errorf("re-export differs:\n%s\nvs\n%s", first.String(), second)
	}
	if _, err := ImportJSON(path); err != nil {
		t.Errorf("ImportJSON() error: %v", err)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := map[string]string{
		"malformed": `{"nodes": [`,
		"duplicate": `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`,
		"dangling":  `{"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "b"}]}`,
		"cycle":     `{"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"from": "a", "to": "b"}, {"from": "b", "to": "a"}]}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(in)); err == nil {
				t.Error("ReadJSON() should fail")
			}
		})
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON() of a missing file should fail")
	}
}
