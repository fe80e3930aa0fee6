package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/catalog"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/config"
	errs "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/graph"
	"github.com/matzehuels/depcollect/pkg/integrations/maven"
	"github.com/matzehuels/depcollect/pkg/policy"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/resolve"
	"github.com/matzehuels/depcollect/pkg/session"
)

// Source supplies versions and descriptors. Both the Maven client and the
// catalog implement it.
type Source interface {
	resolve.VersionRangeResolver
	resolve.DescriptorReader
}

// Runner wires settings, cache and source into collections. It holds no
// per-collection state and may be shared by concurrent callers.
type Runner struct {
	Settings config.Settings
	Cache    cache.Cache
	Logger   *log.Logger

	source    Source
	manager   *repository.Manager
	collector *collect.Collector
	refresher *collect.Collector // bypasses cached repository responses
}

// NewRunner opens the configured cache and source. With Settings.Catalog
// set the catalog file replaces remote repositories.
func NewRunner(ctx context.Context, s config.Settings, logger *log.Logger) (*Runner, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c, err := cache.New(ctx, s.Cache.Config)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	c = cache.Instrument(c)

	if s.Catalog != "" {
		cat, err := catalog.Load(s.Catalog)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		logger.Debug("using catalog", "path", s.Catalog, "artifacts", cat.Len())
		return newRunner(s, c, cat, cat, logger)
	}

	opts := maven.Options{
		CacheTTL:     s.Cache.TTL,
		Offline:      s.Offline,
		Repositories: s.Repositories,
		Logger:       logger,
	}
	if s.Cache.Prefix != "" && s.Cache.Backend != cache.BackendRedis {
		opts.Keyer = cache.NewScopedKeyer(nil, s.Cache.Prefix)
	}
	cached := maven.NewClient(c, opts)
	opts.Refresh = true
	fresh := maven.NewClient(c, opts)
	return newRunner(s, c, cached, fresh, logger)
}

// NewRunnerWithSource builds a runner around an existing source. A nil
// cache disables caching.
func NewRunnerWithSource(s config.Settings, c cache.Cache, src Source, logger *log.Logger) (*Runner, error) {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return newRunner(s, c, src, src, logger)
}

func newRunner(s config.Settings, c cache.Cache, cached, fresh Source, logger *log.Logger) (*Runner, error) {
	mgr := repository.NewManager(s.MirrorList()...)
	mgr.Logger = logger

	opts := collect.Options{MaxRelocations: s.Collect.MaxRelocations, Logger: logger}
	col, err := collect.New(cached, cached, mgr, opts)
	if err != nil {
		return nil, err
	}
	refresher, err := collect.New(fresh, fresh, mgr, opts)
	if err != nil {
		return nil, err
	}
	return &Runner{Settings: s, Cache: c, Logger: logger, source: cached, manager: mgr, collector: col, refresher: refresher}, nil
}

// Versions lists the known versions of group:name, oldest first.
func (r *Runner) Versions(ctx context.Context, group, name string) ([]string, error) {
	if group == "" || name == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "group and name are required")
	}
	res, err := r.source.ResolveVersionRange(ctx, resolve.VersionRangeRequest{
		Artifact:     artifact.New(group, name, "(,)"),
		Repositories: r.manager.Apply(r.Settings.Repositories),
	})
	if err != nil {
		return nil, err
	}
	return res.Versions, nil
}

// Session returns the collection session derived from the settings.
func (r *Runner) Session() *collect.Session {
	cfg := session.New(r.Settings.SessionProperties())
	cfg.Offline = r.Settings.Offline
	return policy.NewSession(cfg)
}

// Collect runs one collection. Like collect.Collector.Collect it returns
// the result alongside a *collect.CollectionError when errors were
// recorded; invalid options return a nil result.
func (r *Runner) Collect(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	tr, _ := opts.transformer()
	req, _ := opts.request(r.Settings.Repositories)
	req.Repositories = r.manager.Apply(req.Repositories)

	label := opts.Root
	if label == "" {
		label = graph.RootID
	}
	req.Trace = resolve.NewTrace(label)

	sess := r.Session()
	if tr != nil {
		sess.Transformer = tr
	}
	col := r.collector
	if opts.Refresh {
		col = r.refresher
	}

	start := time.Now()
	res, err := col.Collect(ctx, sess, req)
	out := &Result{Collection: res, Duration: time.Since(start)}
	if res.Root != nil {
		out.Stats = graph.Summarize(res.Root)
	}

	logger := r.Logger.With("root", label, "trace", req.Trace.ID)
	if err != nil {
		logger.Warn("collection finished with errors", "errors", len(res.Errors), "duration", out.Duration)
	} else {
		logger.Info("collected dependencies", "nodes", out.Stats.Nodes, "edges", out.Stats.Edges, "duration", out.Duration)
	}
	return out, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
