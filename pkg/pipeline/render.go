package pipeline

import (
	"context"
	"io"

	"github.com/matzehuels/depcollect/pkg/dag"
	errs "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/graph"
	pkgio "github.com/matzehuels/depcollect/pkg/io"
	"github.com/matzehuels/depcollect/pkg/render/nodelink"
)

// RenderOptions tune Render.
type RenderOptions struct {
	// Verbose adds management details to tree output and metadata to
	// diagram labels.
	Verbose bool
}

// Render writes the collected graph in the given format.
func Render(ctx context.Context, w io.Writer, res *Result, format string, opts RenderOptions) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	if res.Failed() {
		return errs.New(errs.ErrCodeCollection, "no graph to render")
	}
	root := res.Collection.Root
	if format == FormatTree {
		return pkgio.WriteTree(w, root, pkgio.TreeOptions{Verbose: opts.Verbose})
	}
	return RenderDAG(ctx, w, graph.Flatten(root), format, opts)
}

// RenderDAG writes an already flattened graph, e.g. one read back from a
// JSON export. The tree format needs the collected graph and is rejected.
func RenderDAG(ctx context.Context, w io.Writer, g *dag.DAG, format string, opts RenderOptions) error {
	switch format {
	case FormatJSON:
		return pkgio.WriteJSON(g, w)
	case FormatDOT, FormatSVG:
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "format %q cannot be rendered from a flattened graph", format)
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Verbose, Scopes: true})
	if format == FormatDOT {
		_, err := io.WriteString(w, dot)
		return err
	}
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	_, err = w.Write(svg)
	return err
}
