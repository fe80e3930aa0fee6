package policy

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
)

// ClassicManager applies the dependency management declared by the root
// (or the request) to transitive dependencies. Management declared deeper
// in the graph is ignored, and the root's direct dependencies are left as
// declared.
type ClassicManager struct {
	depth      int
	versions   map[string]string
	scopes     map[string]string
	localPaths map[string]string
	exclusions map[string][]artifact.Exclusion
}

func NewClassicManager() *ClassicManager {
	return &ClassicManager{}
}

func (m *ClassicManager) DeriveChild(ctx collect.Context) collect.Manager {
	switch {
	case m.depth >= 2:
		return m
	case m.depth == 1:
		c := *m
		c.depth++
		return &c
	}

	c := &ClassicManager{
		depth:      m.depth + 1,
		versions:   maps.Clone(m.versions),
		scopes:     maps.Clone(m.scopes),
		localPaths: maps.Clone(m.localPaths),
		exclusions: maps.Clone(m.exclusions),
	}
	for _, md := range ctx.ManagedDependencies {
		key := md.Artifact.VersionlessID()
		if v := md.Artifact.Version; v != "" {
			putIfAbsent(&c.versions, key, v)
		}
		if md.Scope != "" {
			putIfAbsent(&c.scopes, key, md.Scope)
		}
		if p := md.Artifact.Property(artifact.PropLocalPath); p != "" {
			putIfAbsent(&c.localPaths, key, p)
		}
		if len(md.Exclusions) > 0 {
			if c.exclusions == nil {
				c.exclusions = make(map[string][]artifact.Exclusion)
			}
			c.exclusions[key] = append(slices.Clip(c.exclusions[key]), md.Exclusions...)
		}
	}
	return c
}

func putIfAbsent(m *map[string]string, k, v string) {
	if *m == nil {
		*m = make(map[string]string)
	}
	if _, ok := (*m)[k]; !ok {
		(*m)[k] = v
	}
}

func (m *ClassicManager) Manage(d artifact.Dependency) *collect.Management {
	if m.depth < 2 {
		return nil
	}
	key := d.Artifact.VersionlessID()
	var mg collect.Management
	var changed bool

	if v, ok := m.versions[key]; ok {
		mg.Version = &v
		changed = true
	}

	props := d.Artifact.Properties
	if s, ok := m.scopes[key]; ok {
		mg.Scope = &s
		changed = true
		if s != artifact.ScopeSystem && d.Artifact.HasProperty(artifact.PropLocalPath) {
			props = maps.Clone(props)
			delete(props, artifact.PropLocalPath)
			mg.Properties = props
		}
	}
	if p, ok := m.localPaths[key]; ok {
		props = maps.Clone(props)
		if props == nil {
			props = make(map[string]string)
		}
		props[artifact.PropLocalPath] = p
		mg.Properties = props
		changed = true
	}

	if ex, ok := m.exclusions[key]; ok {
		mg.Exclusions = slices.Concat(d.Exclusions, ex)
		changed = true
	}

	if !changed {
		return nil
	}
	return &mg
}

func (m *ClassicManager) PolicyKey() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(m.depth))
	writeMap(&b, "v", m.versions)
	writeMap(&b, "s", m.scopes)
	writeMap(&b, "p", m.localPaths)
	for _, k := range slices.Sorted(maps.Keys(m.exclusions)) {
		b.WriteString("|x:")
		b.WriteString(k)
		for _, e := range m.exclusions[k] {
			b.WriteByte(',')
			b.WriteString(e.String())
		}
	}
	return b.String()
}

func writeMap(b *strings.Builder, tag string, m map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		b.WriteString("|" + tag + ":")
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(m[k])
	}
}
