// Package pkg provides the libraries behind depcollect, a collector of
// transitive Maven dependency graphs.
//
// # Overview
//
// Collection starts from a root artifact (or a list of direct
// dependencies), resolves version ranges, reads artifact descriptors and
// expands every selected dependency recursively into a graph. Pluggable
// policies decide which dependencies are selected, how dependency
// management rewrites them and which ones are traversed.
//
// # Architecture
//
//	Remote repository / catalog
//	         ↓
//	    [integrations/maven] or [catalog] (versions + descriptors)
//	         ↓
//	    [collect] (recursive expansion, driven by [policy])
//	         ↓
//	    [graph] (collected nodes and edges)
//	         ↓
//	    [transform] (optional conflict resolution)
//	         ↓
//	    [io], [render/nodelink] (tree, JSON, DOT, SVG)
//
// [pipeline] wires these together from [config] settings, and [server]
// exposes the pipeline over HTTP.
//
// # Main Packages
//
//   - [artifact]: coordinates, dependencies and exclusions
//   - [version]: Maven version ordering and range parsing
//   - [repository]: remote repositories, mirrors and aggregation
//   - [resolve]: the range resolver and descriptor reader contracts
//   - [session]: per-collection configuration and shared caches
//   - [collect]: the dependency collector
//   - [policy]: stock selectors, managers and traversers
//   - [cache]: file, memory, Redis and MongoDB response caches
//   - [observability]: metrics hooks, with a Prometheus implementation
package pkg
