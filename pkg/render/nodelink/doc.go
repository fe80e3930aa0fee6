// Package nodelink draws flattened dependency graphs as node-link diagrams.
//
//	dot := nodelink.ToDOT(graph.Flatten(result.Root), nodelink.Options{Scopes: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be written out and fed to an external Graphviz.
// SVG rendering runs in-process through [github.com/goccy/go-graphviz].
package nodelink
