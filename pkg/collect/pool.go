package collect

import (
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/graph"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/resolve"
)

// pool memoizes resolver and reader calls and finished nodes for the
// duration of one collection. Keys are exact: two requests share an entry
// only if every field that could change the answer is equal.
type pool struct {
	ranges      map[string]*resolve.VersionRangeResult
	descriptors map[string]*resolve.DescriptorResult
	nodes       map[string]*graph.Node

	artifacts    map[string]artifact.Artifact
	dependencies map[string]*artifact.Dependency

	// Keys may embed policy addresses, including those of members held by
	// a keyed composite, so every keyed policy outlives its key.
	pinned []any
}

func newPool() *pool {
	return &pool{
		ranges:       make(map[string]*resolve.VersionRangeResult),
		descriptors:  make(map[string]*resolve.DescriptorResult),
		nodes:        make(map[string]*graph.Node),
		artifacts:    make(map[string]artifact.Artifact),
		dependencies: make(map[string]*artifact.Dependency),
	}
}

func (p *pool) internArtifact(a artifact.Artifact) artifact.Artifact {
	k := a.Key()
	if v, ok := p.artifacts[k]; ok {
		return v
	}
	p.artifacts[k] = a
	return a
}

// internDependency returns the shared instance equal to d.
func (p *pool) internDependency(d artifact.Dependency) *artifact.Dependency {
	d.Artifact = p.internArtifact(d.Artifact)
	k := d.Key()
	if v, ok := p.dependencies[k]; ok {
		return v
	}
	p.dependencies[k] = &d
	return &d
}

func requestKey(a artifact.Artifact, repos []repository.RemoteRepository, reqCtx string) string {
	var b strings.Builder
	b.WriteString(a.Key())
	writeRepos(&b, repos)
	b.WriteString("\x00ctx=")
	b.WriteString(reqCtx)
	return b.String()
}

func (p *pool) nodeKey(a artifact.Artifact, repos []repository.RemoteRepository, policies ...any) string {
	var b strings.Builder
	b.WriteString(a.Key())
	writeRepos(&b, repos)
	for _, pol := range policies {
		if pol != nil {
			p.pinned = append(p.pinned, pol)
		}
		b.WriteString("\x00")
		b.WriteString(PolicyKey(pol))
	}
	return b.String()
}

func writeRepos(b *strings.Builder, repos []repository.RemoteRepository) {
	b.WriteString("\x00repos=")
	for _, r := range repos {
		b.WriteString(r.ID)
		b.WriteByte('|')
		b.WriteString(r.URL)
		b.WriteByte('|')
		b.WriteString(r.Layout)
		b.WriteByte(';')
	}
}
