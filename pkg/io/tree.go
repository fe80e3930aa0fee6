package io

import (
	"bufio"
	"io"
	"strings"

	"github.com/matzehuels/depcollect/pkg/graph"
)

// TreeOptions controls WriteTree.
type TreeOptions struct {
	// Verbose appends management and relocation details to each line.
	Verbose bool
}

// WriteTree prints the graph under root as an indented tree, two spaces
// per level. A node whose children were already printed is marked "(*)"
// and not expanded again.
func WriteTree(w io.Writer, root *graph.Edge, opts TreeOptions) error {
	bw := bufio.NewWriter(w)
	printed := make(map[*graph.Node]bool)
	graph.Walk(root, func(e *graph.Edge, depth int) bool {
		bw.WriteString(strings.Repeat("  ", depth))
		bw.WriteString(Line(e, opts.Verbose))
		if printed[e.Target] && len(e.Target.Children) > 0 {
			bw.WriteString(" (*)")
		}
		bw.WriteByte('\n')
		printed[e.Target] = true
		return true
	})
	return bw.Flush()
}

// Line renders a single edge. The root edge shows only its artifact.
func Line(e *graph.Edge, verbose bool) string {
	if e.IsRoot() {
		if e.Dependency == nil {
			return graph.RootID
		}
		return e.Artifact().String()
	}

	var b strings.Builder
	b.WriteString(e.Artifact().String())
	b.WriteString(" [")
	b.WriteString(e.Scope)
	if e.Optional() {
		b.WriteString(", optional")
	}
	b.WriteByte(']')
	if !verbose {
		return b.String()
	}
	if e.PremanagedVersion != "" {
		b.WriteString(" (version managed from " + e.PremanagedVersion + ")")
	}
	if e.PremanagedScope != "" {
		b.WriteString(" (scope managed from " + e.PremanagedScope + ")")
	}
	if e.VersionConstraint != "" && e.VersionConstraint != e.Version {
		b.WriteString(" (from " + e.VersionConstraint + ")")
	}
	for _, r := range e.Relocations {
		b.WriteString(" (relocated from " + r.String() + ")")
	}
	return b.String()
}
