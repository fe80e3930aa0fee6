package catalog

import (
	"context"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/resolve"
	"github.com/matzehuels/depcollect/pkg/session"
	"github.com/matzehuels/depcollect/pkg/version"
)

// LocalRepositoryID pins releases to the catalog directory.
const LocalRepositoryID = "local"

type catalogFile struct {
	Repositories []repository.RemoteRepository `toml:"repository"`
	Artifacts    []artifactEntry               `toml:"artifact"`
}

type artifactEntry struct {
	Coordinate string         `toml:"coordinate"`
	Repository string         `toml:"repository"`
	Releases   []releaseEntry `toml:"release"`
}

type releaseEntry struct {
	Version      string                        `toml:"version"`
	Dependencies []dependencyEntry             `toml:"dependency"`
	Managed      []dependencyEntry             `toml:"managed"`
	Relocation   string                        `toml:"relocation"`
	Aliases      []string                      `toml:"aliases"`
	Repositories []repository.RemoteRepository `toml:"repository"`
	Properties   map[string]string             `toml:"properties"`
}

type dependencyEntry struct {
	Coordinate string   `toml:"coordinate"`
	Type       string   `toml:"type"`
	Scope      string   `toml:"scope"`
	Optional   bool     `toml:"optional"`
	Exclusions []string `toml:"exclusions"`
}

// Catalog holds decoded artifacts. It is read-only after Load and safe for
// concurrent use.
type Catalog struct {
	dir       string
	repos     map[string]repository.RemoteRepository
	artifacts map[string]*entry
}

type entry struct {
	pin      repository.Repository
	versions []string
	releases map[string]*resolve.DescriptorResult
}

var (
	_ resolve.VersionRangeResolver = (*Catalog)(nil)
	_ resolve.DescriptorReader     = (*Catalog)(nil)
)

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open catalog")
	}
	defer f.Close()
	abs, _ := filepath.Abs(filepath.Dir(path))
	return Decode(f, abs, nil)
}

// Parse decodes a catalog from TOML text with the default artifact types.
func Parse(data string) (*Catalog, error) {
	return Decode(strings.NewReader(data), ".", nil)
}

// Decode reads a catalog. dir roots the "local" repository; types maps
// dependency types to artifacts and defaults to the standard registry.
func Decode(r io.Reader, dir string, types *session.ArtifactTypes) (*Catalog, error) {
	var file catalogFile
	if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	if types == nil {
		types = session.DefaultArtifactTypes()
	}

	c := &Catalog{
		dir:       dir,
		repos:     make(map[string]repository.RemoteRepository),
		artifacts: make(map[string]*entry),
	}
	for _, r := range file.Repositories {
		if r.ID == "" || r.URL == "" {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "repository needs id and url")
		}
		c.repos[r.ID] = normalizeRepo(r)
	}
	for _, a := range file.Artifacts {
		if err := c.add(a, types); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func normalizeRepo(r repository.RemoteRepository) repository.RemoteRepository {
	n := repository.NewRemote(r.ID, r.URL)
	if r.Layout != "" {
		n.Layout = r.Layout
	}
	return n
}

func (c *Catalog) add(a artifactEntry, types *session.ArtifactTypes) error {
	group, name, ok := strings.Cut(strings.TrimSpace(a.Coordinate), ":")
	if !ok || group == "" || name == "" || strings.Contains(name, ":") {
		return errors.New(errors.ErrCodeInvalidCatalog, "artifact coordinate %q, expected group:name", a.Coordinate)
	}
	key := group + ":" + name
	if _, dup := c.artifacts[key]; dup {
		return errors.New(errors.ErrCodeInvalidCatalog, "artifact %s listed twice", key)
	}

	e := &entry{releases: make(map[string]*resolve.DescriptorResult)}
	switch a.Repository {
	case "":
	case LocalRepositoryID:
		e.pin = repository.LocalRepository{Dir: c.dir}
	default:
		repo, ok := c.repos[a.Repository]
		if !ok {
			return errors.New(errors.ErrCodeInvalidCatalog, "artifact %s: unknown repository %q", key, a.Repository)
		}
		e.pin = repo
	}

	for _, rel := range a.Releases {
		if rel.Version == "" {
			return errors.New(errors.ErrCodeInvalidCatalog, "artifact %s: release without version", key)
		}
		if _, dup := e.releases[rel.Version]; dup {
			return errors.New(errors.ErrCodeInvalidCatalog, "artifact %s: version %s listed twice", key, rel.Version)
		}
		desc, err := release(rel, types)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "artifact %s:%s", key, rel.Version)
		}
		e.releases[rel.Version] = desc
		e.versions = append(e.versions, rel.Version)
	}
	version.Sort(e.versions)
	c.artifacts[key] = e
	return nil
}

func release(rel releaseEntry, types *session.ArtifactTypes) (*resolve.DescriptorResult, error) {
	var d resolve.DescriptorResult
	var err error
	if d.Dependencies, err = dependencies(rel.Dependencies, types); err != nil {
		return nil, err
	}
	if d.ManagedDependencies, err = dependencies(rel.Managed, types); err != nil {
		return nil, err
	}
	if rel.Relocation != "" {
		to, err := artifact.Parse(rel.Relocation)
		if err != nil {
			return nil, err
		}
		d.Relocations = []artifact.Artifact{to}
	}
	for _, s := range rel.Aliases {
		a, err := artifact.Parse(s)
		if err != nil {
			return nil, err
		}
		d.Aliases = append(d.Aliases, a)
	}
	for _, r := range rel.Repositories {
		d.Repositories = append(d.Repositories, normalizeRepo(r))
	}
	if len(rel.Properties) > 0 {
		d.Artifact.Properties = rel.Properties
	}
	return &d, nil
}

func dependencies(entries []dependencyEntry, types *session.ArtifactTypes) ([]artifact.Dependency, error) {
	var out []artifact.Dependency
	for _, e := range entries {
		a, err := artifact.Parse(e.Coordinate)
		if err != nil {
			return nil, err
		}
		if e.Type != "" {
			a = types.Artifact(e.Type, a.Group, a.Name, a.Version, a.Classifier)
		}
		d := artifact.NewDependency(a, e.Scope).WithOptional(e.Optional)
		for _, s := range e.Exclusions {
			ex, ok := artifact.ParseExclusion(s)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidCatalog, "bad exclusion %q", s)
			}
			d.Exclusions = append(d.Exclusions, ex)
		}
		out = append(out, d)
	}
	return out, nil
}

func (c *Catalog) lookup(a artifact.Artifact) (*entry, bool) {
	e, ok := c.artifacts[a.Group+":"+a.Name]
	return e, ok
}

// Repository returns a repository declared at the top of the catalog.
func (c *Catalog) Repository(id string) (repository.RemoteRepository, bool) {
	r, ok := c.repos[id]
	return r, ok
}

// Len reports the number of artifacts.
func (c *Catalog) Len() int { return len(c.artifacts) }

// Versions lists the versions of group:name in ascending order.
func (c *Catalog) Versions(group, name string) []string {
	e, ok := c.artifacts[group+":"+name]
	if !ok {
		return nil
	}
	return append([]string(nil), e.versions...)
}

// ResolveVersionRange matches the request's version or range against the
// catalog's releases.
func (c *Catalog) ResolveVersionRange(ctx context.Context, req resolve.VersionRangeRequest) (*resolve.VersionRangeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a := req.Artifact
	e, ok := c.lookup(a)
	if !ok {
		return nil, errors.New(errors.ErrCodeVersionRange, "%s:%s is not in the catalog", a.Group, a.Name)
	}

	res := &resolve.VersionRangeResult{Constraint: a.Version}
	if version.IsRange(a.Version) {
		rng, err := version.ParseRange(a.Version)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeVersionRange, err, "range of %s", a)
		}
		res.Versions = rng.Filter(e.versions)
	} else if _, ok := e.releases[a.Version]; ok {
		res.Versions = []string{a.Version}
	}

	if e.pin != nil && len(res.Versions) > 0 {
		res.Repositories = make(map[string]repository.Repository, len(res.Versions))
		for _, v := range res.Versions {
			res.Repositories[v] = e.pin
		}
	}
	return res, nil
}

// ReadDescriptor returns the release's declared dependencies. For a
// relocated release the result names the new artifact; the requested
// extension and classifier carry over.
func (c *Catalog) ReadDescriptor(ctx context.Context, req resolve.DescriptorRequest) (*resolve.DescriptorResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a := req.Artifact
	e, ok := c.lookup(a)
	if !ok {
		return nil, errors.New(errors.ErrCodeDescriptor, "%s:%s is not in the catalog", a.Group, a.Name)
	}
	rel, ok := e.releases[a.Version]
	if !ok {
		return nil, errors.New(errors.ErrCodeDescriptor, "%s has no release %s", a.VersionlessID(), a.Version)
	}

	res := &resolve.DescriptorResult{
		Artifact:            a,
		Dependencies:        rel.Dependencies,
		ManagedDependencies: rel.ManagedDependencies,
		Repositories:        rel.Repositories,
		Aliases:             rel.Aliases,
	}
	if len(rel.Artifact.Properties) > 0 {
		props := maps.Clone(a.Properties)
		if props == nil {
			props = make(map[string]string, len(rel.Artifact.Properties))
		}
		maps.Copy(props, rel.Artifact.Properties)
		res.Artifact = a.WithProperties(props)
	}
	if len(rel.Relocations) > 0 {
		to := rel.Relocations[0]
		moved := a
		moved.Group, moved.Name, moved.Version = to.Group, to.Name, to.Version
		res = &resolve.DescriptorResult{Artifact: moved, Relocations: []artifact.Artifact{a}}
	}
	return res, nil
}
