// Package transform post-processes collected dependency graphs.
//
// Collection produces a raw graph that may contain several versions of the
// same artifact. A [Transformer] rewrites that graph, for example to pick a
// winning version. Transformers run once per collection, after the graph is
// complete; a failing transformer is recorded as a collection error and the
// untransformed graph is kept.
package transform

import (
	"context"
	"fmt"

	"github.com/matzehuels/depcollect/pkg/graph"
)

// Transformer rewrites a collected graph and returns its new root edge.
type Transformer interface {
	Transform(ctx context.Context, root *graph.Edge) (*graph.Edge, error)
}

// Func adapts a function to Transformer.
type Func func(ctx context.Context, root *graph.Edge) (*graph.Edge, error)

func (f Func) Transform(ctx context.Context, root *graph.Edge) (*graph.Edge, error) {
	return f(ctx, root)
}

// Noop returns the graph unchanged.
type Noop struct{}

func (Noop) Transform(_ context.Context, root *graph.Edge) (*graph.Edge, error) { return root, nil }

// Chain runs transformers in order, feeding each the previous result. It
// stops at the first error and returns the last successful root with it.
type Chain []Transformer

func (c Chain) Transform(ctx context.Context, root *graph.Edge) (*graph.Edge, error) {
	for i, t := range c {
		if err := ctx.Err(); err != nil {
			return root, err
		}
		next, err := t.Transform(ctx, root)
		if err != nil {
			return root, fmt.Errorf("transformer %d: %w", i, err)
		}
		root = next
	}
	return root, nil
}
