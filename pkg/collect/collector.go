package collect

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/graph"
	"github.com/matzehuels/depcollect/pkg/observability"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/resolve"
)

// DefaultMaxRelocations bounds how often one dependency may be relocated
// before collection gives up on it.
const DefaultMaxRelocations = 32

// Options configures a Collector.
type Options struct {
	MaxRelocations int                        // default: 32
	Logger         *log.Logger                // default: discards output
	Hooks          observability.CollectHooks // default: the globally registered hooks
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxRelocations <= 0 {
		opts.MaxRelocations = DefaultMaxRelocations
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Hooks == nil {
		opts.Hooks = observability.Collect()
	}
	return opts
}

// Collector builds dependency graphs. It holds no per-collection state and
// may be used for concurrent collections.
type Collector struct {
	resolver   resolve.VersionRangeResolver
	reader     resolve.DescriptorReader
	aggregator repository.Aggregator
	opts       Options
}

// New creates a Collector. All three collaborators are required.
func New(resolver resolve.VersionRangeResolver, reader resolve.DescriptorReader, aggregator repository.Aggregator, opts Options) (*Collector, error) {
	switch {
	case resolver == nil:
		return nil, errors.New(errors.ErrCodeInvalidInput, "collector: version range resolver is required")
	case reader == nil:
		return nil, errors.New(errors.ErrCodeInvalidInput, "collector: descriptor reader is required")
	case aggregator == nil:
		return nil, errors.New(errors.ErrCodeInvalidInput, "collector: repository aggregator is required")
	}
	return &Collector{resolver: resolver, reader: reader, aggregator: aggregator, opts: opts.WithDefaults()}, nil
}

// Collect builds the dependency graph described by req.
//
// The returned Result is non-nil. If any error was recorded along the way
// the error is a *CollectionError wrapping the same Result; the graph then
// holds everything that could be collected. Failure to resolve the root
// leaves Result.Root nil.
func (c *Collector) Collect(ctx context.Context, sess *Session, req Request) (*Result, error) {
	start := time.Now()
	label := "(no root)"
	if req.Root != nil {
		label = req.Root.Artifact.String()
	}
	c.opts.Hooks.OnCollectStart(ctx, label)

	res := &Result{Request: req}
	col := &collection{
		Collector: c,
		ctx:       ctx,
		sess:      sess.withDefaults(),
		req:       req,
		res:       res,
		pool:      newPool(),
		trace:     req.Trace.Child(req),
		log:       c.opts.Logger.With("collection", label),
	}
	col.run()

	var err error
	if len(res.Errors) > 0 {
		err = &CollectionError{Result: res}
	}
	var stats graph.Stats
	if res.Root != nil {
		stats = graph.Summarize(res.Root)
	}
	c.opts.Hooks.OnCollectComplete(ctx, label, stats.Nodes, len(res.Errors), time.Since(start), err)
	col.log.Debug("collection finished", "nodes", stats.Nodes, "edges", stats.Edges, "errors", len(res.Errors), "duration", time.Since(start))
	return res, err
}

// collection is the state of one Collect call. It is used by a single
// goroutine.
type collection struct {
	*Collector

	ctx   context.Context
	sess  *Session
	req   Request
	res   *Result
	pool  *pool
	trace *resolve.Trace
	log   *log.Logger

	// ancestors is the path from the root edge to the current parent.
	ancestors []*graph.Edge
	canceled  bool
}

func (c *collection) run() {
	repos := c.req.Repositories
	deps := c.req.Dependencies
	managed := c.req.ManagedDependencies

	var root *artifact.Dependency
	var rootEdge *graph.Edge

	if c.req.Root != nil {
		dep := *c.req.Root
		rng, err := c.resolveRange(dep.Artifact, c.req.Repositories)
		if err != nil {
			c.res.record(err)
			return
		}
		ver := rng.Highest()
		dep = dep.WithArtifact(dep.Artifact.WithVersion(ver))

		desc, err := c.readDescriptor(dep.Artifact, c.req.Repositories, lacksDescriptor(dep.Artifact))
		if err != nil {
			c.res.record(err)
			return
		}
		dep = dep.WithArtifact(desc.Artifact)

		repos = c.aggregator.Aggregate(repos, desc.Repositories, true)
		deps = mergeDeps(deps, desc.Dependencies)
		managed = mergeDeps(managed, desc.ManagedDependencies)

		root = &dep
		rootEdge = graph.NewEdge(root, graph.NewNode(desc.Aliases, c.req.Repositories))
		rootEdge.Relocations = desc.Relocations
		rootEdge.VersionConstraint = rng.Constraint
		rootEdge.Version = ver
	} else {
		rootEdge = graph.NewEdge(nil, graph.NewNode(nil, c.req.Repositories))
	}
	rootEdge.RequestContext = c.req.RequestContext
	c.res.Root = rootEdge

	if (root == nil || c.sess.Traverser.Traverse(*root)) && len(deps) > 0 {
		cctx := Context{Session: c.sess, Dependency: root, ManagedDependencies: managed}
		c.ancestors = []*graph.Edge{rootEdge}
		c.process(deps, repos,
			c.sess.Selector.DeriveChild(cctx),
			c.sess.Manager.DeriveChild(cctx),
			c.sess.Traverser.DeriveChild(cctx))
	}

	if c.canceled {
		return
	}
	out, err := c.sess.Transformer.Transform(c.ctx, rootEdge)
	if err != nil {
		c.res.record(errors.Wrap(errors.ErrCodeTransform, err, "transform graph"))
	}
	if out != nil {
		c.res.Root = out
	}
}

func (c *collection) process(deps []artifact.Dependency, repos []repository.RemoteRepository, sel Selector, mgr Manager, trav Traverser) {
	for _, dep := range deps {
		if c.canceled {
			return
		}
		if err := c.ctx.Err(); err != nil {
			c.canceled = true
			c.res.record(errors.Wrap(errors.ErrCodeCanceled, err, "collection canceled"))
			return
		}
		c.processDependency(dep, repos, sel, mgr, trav)
	}
}

func (c *collection) processDependency(dep artifact.Dependency, repos []repository.RemoteRepository, sel Selector, mgr Manager, trav Traverser) {
	var (
		relocations   []artifact.Artifact
		keepVersion   bool
		relocateCount int
	)

	for {
		if !sel.Select(dep) {
			return
		}

		var premanagedVersion, premanagedScope string
		if m := mgr.Manage(dep); m != nil {
			if m.Version != nil && !keepVersion && *m.Version != dep.Artifact.Version {
				premanagedVersion = dep.Artifact.Version
				dep = dep.WithArtifact(dep.Artifact.WithVersion(*m.Version))
			}
			if m.Properties != nil {
				dep = dep.WithArtifact(dep.Artifact.WithProperties(m.Properties))
			}
			if m.Scope != nil && *m.Scope != dep.Scope {
				premanagedScope = dep.Scope
				dep = dep.WithScope(*m.Scope)
			}
			if m.Exclusions != nil {
				dep = dep.WithExclusions(m.Exclusions)
			}
		}
		keepVersion = false

		noDescriptor := lacksDescriptor(dep.Artifact)
		traverse := !noDescriptor && trav.Traverse(dep)

		rng, err := c.resolveRange(dep.Artifact, repos)
		if err != nil {
			c.res.record(err)
			return
		}

		relocated := false
		for _, ver := range rng.Versions {
			original := dep.Artifact.WithVersion(ver)
			d := dep.WithArtifact(original)
			verRepos := reposFor(rng.Repository(ver), repos)

			desc, err := c.readDescriptor(original, verRepos, noDescriptor)
			if err != nil {
				c.res.record(err)
				continue
			}
			d = d.WithArtifact(desc.Artifact)

			if c.findDuplicate(d.Artifact) {
				c.opts.Hooks.OnDuplicate(c.ctx, d.Artifact.String())
				c.log.Debug("skipping cycle", "artifact", d.Artifact)
				continue
			}

			if desc.Relocated() {
				relocateCount++
				if relocateCount > c.opts.MaxRelocations {
					c.res.record(errors.New(errors.ErrCodeRelocationLoop,
						"%s relocated more than %d times", original, c.opts.MaxRelocations))
					return
				}
				c.opts.Hooks.OnRelocation(c.ctx, original.String(), d.Artifact.String())
				c.log.Debug("relocated", "from", original, "to", d.Artifact)
				relocations = append(slices.Clone(relocations), desc.Relocations...)
				keepVersion = original.Group == d.Artifact.Group && original.Name == d.Artifact.Name
				dep = d
				relocated = true
				break
			}

			c.addEdge(d, desc, rng, ver, verRepos, repos, relocations,
				premanagedVersion, premanagedScope, traverse, sel, mgr, trav)
			if c.canceled {
				return
			}
		}
		if !relocated {
			return
		}
	}
}

func (c *collection) addEdge(d artifact.Dependency, desc *resolve.DescriptorResult, rng *resolve.VersionRangeResult,
	ver string, verRepos, repos []repository.RemoteRepository, relocations []artifact.Artifact,
	premanagedVersion, premanagedScope string, traverse bool, sel Selector, mgr Manager, trav Traverser,
) {
	dp := c.pool.internDependency(d)

	recurse := traverse && len(desc.Dependencies) > 0
	var (
		childSel   Selector
		childMgr   Manager
		childTrav  Traverser
		childRepos []repository.RemoteRepository
		key        string
	)
	if recurse {
		cctx := Context{Session: c.sess, Dependency: dp, ManagedDependencies: desc.ManagedDependencies}
		childSel = sel.DeriveChild(cctx)
		childMgr = mgr.DeriveChild(cctx)
		childTrav = trav.DeriveChild(cctx)
		childRepos = c.aggregator.Aggregate(repos, desc.Repositories, true)
		key = c.pool.nodeKey(dp.Artifact, childRepos, childSel, childMgr, childTrav)
	} else {
		key = c.pool.nodeKey(dp.Artifact, repos)
	}

	node, ok := c.pool.nodes[key]
	if ok {
		recurse = false
		c.opts.Hooks.OnNodeReused(c.ctx, dp.Artifact.String())
		if len(verRepos) < len(node.Repositories) {
			node.Repositories = verRepos
		}
	} else {
		node = graph.NewNode(desc.Aliases, verRepos)
		c.pool.nodes[key] = node
	}

	e := graph.NewEdge(dp, node)
	e.PremanagedScope = premanagedScope
	e.PremanagedVersion = premanagedVersion
	e.Relocations = relocations
	e.VersionConstraint = rng.Constraint
	e.Version = ver
	e.RequestContext = c.req.RequestContext
	c.ancestors[len(c.ancestors)-1].Target.Append(e)

	if recurse {
		c.ancestors = append(c.ancestors, e)
		c.process(desc.Dependencies, childRepos, childSel, childMgr, childTrav)
		c.ancestors = c.ancestors[:len(c.ancestors)-1]
	}
}

// findDuplicate reports whether an ancestor resolves to the same artifact.
// The walk stops at the synthetic root edge.
func (c *collection) findDuplicate(a artifact.Artifact) bool {
	for i := len(c.ancestors) - 1; i >= 0; i-- {
		dep := c.ancestors[i].Dependency
		if dep == nil {
			return false
		}
		if artifact.Same(dep.Artifact, a) {
			return true
		}
	}
	return false
}

func (c *collection) resolveRange(a artifact.Artifact, repos []repository.RemoteRepository) (*resolve.VersionRangeResult, error) {
	key := requestKey(a, repos, c.req.RequestContext)
	rng, ok := c.pool.ranges[key]
	if !ok {
		var err error
		rng, err = c.resolver.ResolveVersionRange(c.ctx, resolve.VersionRangeRequest{
			Artifact:       a,
			Repositories:   repos,
			RequestContext: c.req.RequestContext,
			Trace:          c.trace,
		})
		n := 0
		if rng != nil {
			n = len(rng.Versions)
		}
		c.opts.Hooks.OnRangeResolved(c.ctx, a.String(), n, err)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeVersionRange, err, "resolve versions of %s", a)
		}
		if rng == nil {
			rng = &resolve.VersionRangeResult{}
		}
		c.pool.ranges[key] = rng
	}
	if len(rng.Versions) == 0 {
		return nil, errors.New(errors.ErrCodeVersionRange, "no versions available for %s within specified range", a)
	}
	return rng, nil
}

func (c *collection) readDescriptor(a artifact.Artifact, repos []repository.RemoteRepository, synthetic bool) (*resolve.DescriptorResult, error) {
	if synthetic {
		return &resolve.DescriptorResult{Artifact: a}, nil
	}
	key := requestKey(a, repos, c.req.RequestContext)
	if desc, ok := c.pool.descriptors[key]; ok {
		return desc, nil
	}
	desc, err := c.reader.ReadDescriptor(c.ctx, resolve.DescriptorRequest{
		Artifact:       a,
		Repositories:   repos,
		RequestContext: c.req.RequestContext,
		Trace:          c.trace,
	})
	c.opts.Hooks.OnDescriptorRead(c.ctx, a.String(), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDescriptor, err, "read descriptor of %s", a)
	}
	if desc == nil {
		desc = &resolve.DescriptorResult{Artifact: a}
	}
	c.pool.descriptors[key] = desc
	return desc, nil
}

// lacksDescriptor reports whether a points at a local file with no
// descriptor to read.
func lacksDescriptor(a artifact.Artifact) bool {
	return a.HasProperty(artifact.PropLocalPath)
}

// reposFor narrows repos to the repository a version was found in.
func reposFor(r repository.Repository, repos []repository.RemoteRepository) []repository.RemoteRepository {
	switch r := r.(type) {
	case nil:
		return repos
	case repository.RemoteRepository:
		return []repository.RemoteRepository{r}
	default:
		return []repository.RemoteRepository{}
	}
}

// mergeDeps appends the entries of extra whose versionless id does not
// already occur in declared.
func mergeDeps(declared, extra []artifact.Dependency) []artifact.Dependency {
	if len(declared) == 0 {
		return extra
	}
	if len(extra) == 0 {
		return declared
	}
	seen := make(map[string]bool, len(declared))
	for _, d := range declared {
		seen[d.Artifact.VersionlessID()] = true
	}
	out := slices.Clone(declared)
	for _, d := range extra {
		if !seen[d.Artifact.VersionlessID()] {
			out = append(out, d)
		}
	}
	return out
}
