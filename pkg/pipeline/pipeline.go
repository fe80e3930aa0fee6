// Package pipeline runs dependency collections for the CLI and the server.
//
// A [Runner] owns the long-lived pieces: the response cache, the source of
// versions and descriptors (a Maven repository client or a TOML catalog)
// and the collector. Each call to [Runner.Collect] builds a fresh session
// from the settings and the per-call [Options]:
//
//	runner, err := pipeline.NewRunner(ctx, settings, logger)
//	if err != nil {
//	    return err
//	}
//	defer runner.Close()
//
//	res, err := runner.Collect(ctx, pipeline.Options{Root: "org.example:app:1.0"})
//	if res != nil && res.Collection.Root != nil {
//	    pipeline.Render(ctx, os.Stdout, res, pipeline.FormatTree)
//	}
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	errs "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/graph"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/transform"
)

// Output formats understood by Render.
const (
	FormatTree = "tree"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatTree: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format %q (must be one of: tree, json, dot, svg)", format)
	}
	return nil
}

// Dependency is a dependency as written in a request.
type Dependency struct {
	Coordinate string   `json:"coordinate"`
	Scope      string   `json:"scope,omitempty"`
	Optional   bool     `json:"optional,omitempty"`
	Exclusions []string `json:"exclusions,omitempty"` // "group:name", "*" wildcards allowed
}

// Options describes one collection. The struct doubles as the body of the
// server's collect endpoint.
type Options struct {
	// Root is the coordinate of the artifact to collect. It may be empty
	// when Dependencies are given.
	Root         string       `json:"root,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
	Managed      []Dependency `json:"managed,omitempty"`

	// Repositories are "id=url" pairs searched before the configured ones.
	Repositories []string `json:"repositories,omitempty"`

	RequestContext string `json:"request_context,omitempty"`

	// Strategy reduces the graph to one version per artifact: "nearest"
	// or "highest". Empty keeps every collected version.
	Strategy string `json:"strategy,omitempty"`

	// Refresh bypasses cached repository responses.
	Refresh bool `json:"refresh,omitempty"`
}

// Validate checks the options without contacting any repository.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Root) == "" && len(o.Dependencies) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "a root or at least one dependency is required")
	}
	if _, err := o.transformer(); err != nil {
		return err
	}
	_, err := o.request(nil)
	return err
}

func (o Options) transformer() (transform.Transformer, error) {
	if o.Strategy == "" {
		return nil, nil
	}
	s, ok := transform.ParseStrategy(o.Strategy)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown strategy %q (must be nearest or highest)", o.Strategy)
	}
	return transform.ConflictResolver{Strategy: s}, nil
}

// request builds the collect request. Request repositories come first,
// followed by the configured ones not already listed.
func (o Options) request(configured []repository.RemoteRepository) (collect.Request, error) {
	req := collect.Request{RequestContext: o.RequestContext}
	if root := strings.TrimSpace(o.Root); root != "" {
		a, err := artifact.Parse(root)
		if err != nil {
			return req, errs.Wrap(errs.ErrCodeInvalidInput, err, "root")
		}
		d := artifact.NewDependency(a, "")
		req.Root = &d
	}

	var err error
	if req.Dependencies, err = dependencies(o.Dependencies); err != nil {
		return req, err
	}
	if req.ManagedDependencies, err = dependencies(o.Managed); err != nil {
		return req, err
	}

	var repos []repository.RemoteRepository
	for _, pair := range o.Repositories {
		id, url, ok := strings.Cut(pair, "=")
		if !ok || id == "" || url == "" {
			return req, errs.New(errs.ErrCodeInvalidInput, "repository %q, expected id=url", pair)
		}
		repos = append(repos, repository.NewRemote(id, url))
	}
	for _, r := range configured {
		if !slices.ContainsFunc(repos, func(c repository.RemoteRepository) bool { return c.ID == r.ID }) {
			repos = append(repos, r)
		}
	}
	req.Repositories = repos
	return req, nil
}

func dependencies(in []Dependency) ([]artifact.Dependency, error) {
	var out []artifact.Dependency
	for _, d := range in {
		a, err := artifact.Parse(d.Coordinate)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "dependency")
		}
		dep := artifact.NewDependency(a, d.Scope).WithOptional(d.Optional)
		var ex []artifact.Exclusion
		for _, s := range d.Exclusions {
			e, ok := artifact.ParseExclusion(s)
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidInput, "exclusion %q on %s", s, d.Coordinate)
			}
			ex = append(ex, e)
		}
		if len(ex) > 0 {
			dep = dep.WithExclusions(ex)
		}
		out = append(out, dep)
	}
	return out, nil
}

// Result is the outcome of Runner.Collect.
type Result struct {
	Collection *collect.Result
	Stats      graph.Stats
	Duration   time.Duration
}

// Failed reports whether the root could not be collected at all.
func (r *Result) Failed() bool { return r == nil || r.Collection == nil || r.Collection.Root == nil }

// Messages returns the recorded errors as strings.
func (r *Result) Messages() []string {
	if r == nil || r.Collection == nil {
		return nil
	}
	out := make([]string, len(r.Collection.Errors))
	for i, err := range r.Collection.Errors {
		out[i] = err.Error()
	}
	return out
}

func (r *Result) String() string {
	return fmt.Sprintf("%d nodes, %d edges, depth %d, %d errors in %s",
		r.Stats.Nodes, r.Stats.Edges, r.Stats.MaxDepth, len(r.Collection.Errors), r.Duration.Round(time.Millisecond))
}
