package collect

import (
	"fmt"
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/graph"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/resolve"
)

// Request describes one collection.
//
// With Root set, the root's version expression is resolved, its descriptor
// read, and its declared dependencies merged with Dependencies (entries in
// Dependencies win). Without Root the graph hangs off a synthetic root edge
// and only Dependencies are expanded.
type Request struct {
	Root                *artifact.Dependency
	Dependencies        []artifact.Dependency
	ManagedDependencies []artifact.Dependency
	Repositories        []repository.RemoteRepository
	RequestContext      string
	Trace               *resolve.Trace
}

// Result is the outcome of a collection. It is returned even when errors
// were recorded, so callers can inspect the partial graph.
type Result struct {
	Request Request
	Root    *graph.Edge // nil when the root could not be resolved
	Errors  []error
}

func (r *Result) record(err error) { r.Errors = append(r.Errors, err) }

// CollectionError reports that a collection finished with recorded errors.
// Its Result holds the partial graph.
type CollectionError struct {
	Result *Result
}

func (e *CollectionError) Error() string {
	var b strings.Builder
	root := "(no root)"
	if e.Result.Request.Root != nil {
		root = e.Result.Request.Root.Artifact.String()
	}
	fmt.Fprintf(&b, "%s: collecting %s: %d error(s)", errors.ErrCodeCollection, root, len(e.Result.Errors))
	for _, err := range e.Result.Errors {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the recorded errors to errors.Is and errors.As.
func (e *CollectionError) Unwrap() []error { return e.Result.Errors }

// Code returns errors.ErrCodeCollection.
func (e *CollectionError) Code() errors.Code { return errors.ErrCodeCollection }
