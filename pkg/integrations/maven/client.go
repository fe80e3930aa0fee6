package maven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/cache"
	errs "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/integrations"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/resolve"
	"github.com/matzehuels/depcollect/pkg/session"
	"github.com/matzehuels/depcollect/pkg/version"
)

// DefaultCacheTTL is used when Options.CacheTTL is zero.
const DefaultCacheTTL = 24 * time.Hour

// ErrOffline is returned for a request that would need the network while
// the client is offline.
var ErrOffline = errors.New("offline and not cached")

// Options configures a Client.
type Options struct {
	// CacheTTL is how long metadata and POMs stay cached.
	CacheTTL time.Duration

	// Refresh bypasses cached entries (they are still rewritten).
	Refresh bool

	// Offline serves cached entries only.
	Offline bool

	// Repositories are consulted when a request carries none.
	// Defaults to Maven Central.
	Repositories []repository.RemoteRepository

	// Types maps declared dependency types to extension and classifier.
	Types *session.ArtifactTypes

	Keyer      cache.Keyer
	Logger     *log.Logger
	HTTPClient *http.Client
}

// WithDefaults returns a copy of o with zero fields filled in.
func (o Options) WithDefaults() Options {
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if len(o.Repositories) == 0 {
		o.Repositories = []repository.RemoteRepository{repository.Central}
	}
	if o.Types == nil {
		o.Types = session.DefaultArtifactTypes()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Client reads Maven-layout repositories. It implements
// [resolve.VersionRangeResolver] and [resolve.DescriptorReader].
//
// All methods are safe for concurrent use.
type Client struct {
	http *integrations.Client
	opts Options
}

var (
	_ resolve.VersionRangeResolver = (*Client)(nil)
	_ resolve.DescriptorReader     = (*Client)(nil)
)

// NewClient creates a client caching responses in c. A nil cache disables
// caching.
func NewClient(c cache.Cache, opts Options) *Client {
	opts = opts.WithDefaults()
	hc := integrations.NewClient(c, opts.CacheTTL).
		WithKeyer(opts.Keyer).
		WithLogger(opts.Logger).
		WithHTTPClient(opts.HTTPClient)
	return &Client{http: hc, opts: opts}
}

func (c *Client) repos(req []repository.RemoteRepository) []repository.RemoteRepository {
	if len(req) == 0 {
		return c.opts.Repositories
	}
	return req
}

// ResolveVersionRange expands a version range against the metadata of every
// repository. Plain versions resolve to themselves without a lookup; LATEST
// and RELEASE resolve to the newest value any repository reports.
func (c *Client) ResolveVersionRange(ctx context.Context, req resolve.VersionRangeRequest) (*resolve.VersionRangeResult, error) {
	a := req.Artifact
	expr := strings.TrimSpace(a.Version)
	res := &resolve.VersionRangeResult{Constraint: expr}

	symbolic := expr == VersionLatest || expr == VersionRelease
	if expr == "" {
		return res, nil
	}
	if !symbolic && !version.IsRange(expr) {
		res.Versions = []string{expr}
		return res, nil
	}

	var rng version.Range
	if !symbolic {
		r, err := version.ParseRange(expr)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "version range of %s", a)
		}
		rng = r
	}

	res.Repositories = make(map[string]repository.Repository)
	var failures []error
	var found bool
	for _, repo := range c.repos(req.Repositories) {
		list, err := c.metadata(ctx, repo, a.Group, a.Name)
		if errors.Is(err, integrations.ErrNotFound) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.opts.Logger.Warn("metadata unavailable", "repository", repo.ID, "artifact", a.VersionlessID(), "err", err)
			failures = append(failures, fmt.Errorf("%s: %w", repo.ID, err))
			continue
		}
		found = true

		candidates := list.Versions
		if symbolic {
			candidates = nil
			if v := list.symbolic(expr); v != "" {
				candidates = []string{v}
			}
		}
		for _, v := range candidates {
			if !symbolic && !rng.Contains(version.Parse(v)) {
				continue
			}
			if _, seen := res.Repositories[v]; !seen {
				res.Repositories[v] = repo
				res.Versions = append(res.Versions, v)
			}
		}
	}

	if !found && len(failures) > 0 {
		return nil, errs.Wrap(errs.ErrCodeNetwork, errors.Join(failures...), "read metadata of %s", a.VersionlessID())
	}
	version.Sort(res.Versions)
	if symbolic && len(res.Versions) > 1 {
		highest := res.Versions[len(res.Versions)-1]
		res.Versions = []string{highest}
	}
	return res, nil
}

func (c *Client) metadata(ctx context.Context, repo repository.RemoteRepository, group, name string) (versionList, error) {
	url := integrations.JoinURL(repo.URL, groupPath(repo, group), name, "maven-metadata.xml")
	key := c.http.Keyer().MetadataKey(repo.URL, group, name)

	var list versionList
	err := c.http.Cached(ctx, key, c.opts.Refresh, &list, func() error {
		if c.opts.Offline {
			return ErrOffline
		}
		data, err := c.http.GetBytes(ctx, url)
		if err != nil {
			return err
		}
		list, err = parseMetadata(data)
		return err
	})
	return list, err
}

// ReadDescriptor reads the POM of req.Artifact from the first repository
// that has it. A POM declaring a relocation yields a result whose Artifact is
// the new coordinate and whose Relocations holds the requested one.
func (c *Client) ReadDescriptor(ctx context.Context, req resolve.DescriptorRequest) (*resolve.DescriptorResult, error) {
	a := req.Artifact
	pomArtifact := artifact.Artifact{Group: a.Group, Name: a.Name, Version: a.Version, Extension: "pom"}

	var (
		pom      *pomProject
		from     repository.RemoteRepository
		failures []error
	)
	for _, repo := range c.repos(req.Repositories) {
		p, err := c.pom(ctx, repo, pomArtifact)
		if err == nil {
			pom, from = p, repo
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, integrations.ErrNotFound) {
			failures = append(failures, fmt.Errorf("%s: %w", repo.ID, err))
		}
	}
	if pom == nil {
		return nil, notFound(a, failures)
	}
	c.opts.Logger.Debug("read pom", "artifact", a, "repository", from.ID)

	res := &resolve.DescriptorResult{Artifact: a}
	if to, ok := pom.relocated(a); ok {
		c.opts.Logger.Debug("relocated", "from", a, "to", to, "message", pom.Relocation.Message)
		res.Artifact = to
		res.Relocations = []artifact.Artifact{a}
		return res, nil
	}

	managed := make(map[string]artifact.Dependency, len(pom.Management))
	for _, d := range pom.Management {
		dep, ok := pom.dependency(d, c.opts.Types)
		if !ok || dep.Scope == artifact.ScopeImport {
			continue
		}
		res.ManagedDependencies = append(res.ManagedDependencies, dep)
		if _, dup := managed[dep.Artifact.VersionlessID()]; !dup {
			managed[dep.Artifact.VersionlessID()] = dep
		}
	}
	for _, d := range pom.Dependencies {
		dep, ok := pom.dependency(d, c.opts.Types)
		if !ok {
			c.opts.Logger.Debug("skipping unresolved dependency", "artifact", a, "group", d.GroupID, "name", d.ArtifactID)
			continue
		}
		res.Dependencies = append(res.Dependencies, applyOwnManagement(dep, d, managed))
	}
	res.Repositories = pom.repositories()
	return res, nil
}

func notFound(a artifact.Artifact, failures []error) error {
	if len(failures) > 0 {
		return errs.Wrap(errs.ErrCodeNetwork, errors.Join(failures...), "read pom of %s", a)
	}
	return errs.Wrap(errs.ErrCodeArtifactNotFound, integrations.ErrNotFound, "no repository has a pom for %s", a)
}

func (c *Client) pom(ctx context.Context, repo repository.RemoteRepository, a artifact.Artifact) (*pomProject, error) {
	url := integrations.JoinURL(repo.URL, groupPath(repo, a.Group), a.Name, a.Version, a.Name+"-"+a.Version+".pom")
	if repo.ContentType() == repository.LayoutLegacy {
		url = integrations.JoinURL(repo.URL, a.Group, "poms", a.Name+"-"+a.Version+".pom")
	}
	key := c.http.Keyer().DescriptorKey(repo.URL, a)

	var raw []byte
	err := c.http.Cached(ctx, key, c.opts.Refresh, &raw, func() error {
		if c.opts.Offline {
			return ErrOffline
		}
		data, err := c.http.GetBytes(ctx, url)
		if err != nil {
			return err
		}
		if _, err := parsePOM(data); err != nil {
			return err
		}
		raw = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parsePOM(raw)
}

func groupPath(repo repository.RemoteRepository, group string) string {
	if repo.ContentType() == repository.LayoutLegacy {
		return group
	}
	return strings.ReplaceAll(group, ".", "/")
}

// Versions lists every version the repositories report for group:name, in
// ascending order.
func (c *Client) Versions(ctx context.Context, group, name string, repos ...repository.RemoteRepository) ([]string, error) {
	res, err := c.ResolveVersionRange(ctx, resolve.VersionRangeRequest{
		Artifact:     artifact.New(group, name, "(,)"),
		Repositories: repos,
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(res.Versions), nil
}
