package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/depcollect/pkg/dag"
	"github.com/matzehuels/depcollect/pkg/graph"
)

type document struct {
	Root  string `json:"root,omitempty"`
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID   string       `json:"id"`
	Row  int          `json:"row"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

// WriteGraph flattens a collected graph and writes it as JSON.
func WriteGraph(root *graph.Edge, w io.Writer) error {
	return WriteJSON(graph.Flatten(root), w)
}

// WriteJSON encodes g as indented JSON. The first node is recorded as the
// document root.
func WriteJSON(g *dag.DAG, w io.Writer) error {
	nodes := g.Nodes()
	out := document{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	for i, n := range nodes {
		out.Nodes[i] = node{ID: n.ID, Row: n.Row, Meta: n.Meta}
	}
	if len(nodes) > 0 {
		out.Root = nodes[0].ID
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{From: e.From, To: e.To, Meta: e.Meta})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// ReadJSON decodes a document written by WriteJSON. Node order and
// metadata are preserved, so a re-export is identical. Duplicate node IDs,
// dangling edges and cycles are rejected.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := dag.New(nil)
	for _, n := range doc.Nodes {
		if err := g.AddNode(dag.Node{ID: n.ID, Row: n.Row, Meta: n.Meta}); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To, Meta: e.Meta}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// ImportJSON reads a JSON file written by ExportJSON.
func ImportJSON(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
