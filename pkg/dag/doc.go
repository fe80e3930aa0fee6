// Package dag provides an ID-addressed directed acyclic graph used to export
// collected dependency graphs.
//
// # Overview
//
// A collected graph (package graph) is built from pointers so nodes can be
// shared between parents. Export formats (JSON, DOT, the HTTP API) need
// stable string identifiers instead; graph.Flatten converts the pointer
// graph into a [DAG] whose nodes carry artifact metadata and whose rows hold
// the depth of each node.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "org.example:app:1.0", Row: 0})
//	g.AddNode(dag.Node{ID: "org.example:lib:2.1", Row: 1})
//	g.AddEdge(dag.Edge{From: "org.example:app:1.0", To: "org.example:lib:2.1"})
//
// Query the graph structure with [DAG.Children], [DAG.Parents],
// [DAG.NodesInRow], and related methods. Use [DAG.Validate] to verify
// structural integrity after importing a graph from an untrusted source.
//
// # Metadata
//
// Nodes, edges and the graph itself carry [Metadata] maps. Flattened graphs
// store coordinates on nodes ("group", "name", "version") and resolution
// details on edges ("scope", "premanaged_version", "relocations").
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
package dag
