package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depcollect/pkg/dag"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the row and node metadata to each label.
	Detailed bool

	// Scopes labels each edge with its dependency scope.
	Scopes bool
}

// ToDOT converts a flattened dependency graph to Graphviz DOT. Optional
// dependencies are drawn dashed and managed ones are drawn in blue.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n\n")

	for i, n := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(*n, opts.Detailed))}
		if i == 0 {
			attrs = append(attrs, "fillcolor=\"#e8f0fe\"", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := edgeAttrs(e, opts.Scopes)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n dag.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{fmt.Sprintf("row: %d", n.Row)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

func edgeAttrs(e dag.Edge, scopes bool) []string {
	var attrs []string
	if scopes {
		if s, ok := e.Meta["scope"].(string); ok && s != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", s))
		}
	}
	if opt, _ := e.Meta["optional"].(bool); opt {
		attrs = append(attrs, "style=dashed")
	}
	_, mv := e.Meta["premanaged_version"]
	_, ms := e.Meta["premanaged_scope"]
	if mv || ms {
		attrs = append(attrs, "color=\"#1a73e8\"")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG in-process.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the generated root element with one whose
// viewBox starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
