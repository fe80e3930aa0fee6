package maven

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/session"
)

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Packaging    string          `xml:"packaging"`
	Name         string          `xml:"name"`
	Description  string          `xml:"description"`
	Parent       pomParent       `xml:"parent"`
	Properties   pomProperties   `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Management   []pomDependency `xml:"dependencyManagement>dependencies>dependency"`
	Repositories []pomRepository `xml:"repositories>repository"`
	Relocation   *pomRelocation  `xml:"distributionManagement>relocation"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDependency struct {
	GroupID    string         `xml:"groupId"`
	ArtifactID string         `xml:"artifactId"`
	Version    string         `xml:"version"`
	Type       string         `xml:"type"`
	Classifier string         `xml:"classifier"`
	Scope      string         `xml:"scope"`
	Optional   string         `xml:"optional"`
	SystemPath string         `xml:"systemPath"`
	Exclusions []pomExclusion `xml:"exclusions>exclusion"`
}

type pomExclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

type pomRepository struct {
	ID     string `xml:"id"`
	URL    string `xml:"url"`
	Layout string `xml:"layout"`
}

type pomRelocation struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Message    string `xml:"message"`
}

// pomProperties collects <properties> children by element name.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := make(pomProperties)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

func parsePOM(data []byte) (*pomProject, error) {
	var pom pomProject
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	if err := dec.Decode(&pom); err != nil {
		return nil, fmt.Errorf("decode pom: %w", err)
	}
	pom.trim()
	return &pom, nil
}

func (p *pomProject) trim() {
	p.GroupID = strings.TrimSpace(p.GroupID)
	p.ArtifactID = strings.TrimSpace(p.ArtifactID)
	p.Version = strings.TrimSpace(p.Version)
	if p.GroupID == "" {
		p.GroupID = strings.TrimSpace(p.Parent.GroupID)
	}
	if p.Version == "" {
		p.Version = strings.TrimSpace(p.Parent.Version)
	}
}

var placeholderRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// maxInterpolation bounds nested property expansion.
const maxInterpolation = 8

// interpolate replaces ${...} references from the POM's own properties and
// its project coordinates. Unknown references are left in place.
func (p *pomProject) interpolate(s string) string {
	s = strings.TrimSpace(s)
	for range maxInterpolation {
		if !strings.Contains(s, "${") {
			return s
		}
		next := placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
			if v, ok := p.lookup(m[2 : len(m)-1]); ok {
				return v
			}
			return m
		})
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func (p *pomProject) lookup(name string) (string, bool) {
	switch name {
	case "project.groupId", "pom.groupId", "groupId":
		return p.GroupID, p.GroupID != ""
	case "project.artifactId", "pom.artifactId", "artifactId":
		return p.ArtifactID, p.ArtifactID != ""
	case "project.version", "pom.version", "version":
		return p.Version, p.Version != ""
	case "project.parent.groupId", "parent.groupId":
		return p.Parent.GroupID, p.Parent.GroupID != ""
	case "project.parent.version", "parent.version":
		return p.Parent.Version, p.Parent.Version != ""
	}
	v, ok := p.Properties[name]
	return v, ok
}

func unresolved(s string) bool { return strings.Contains(s, "${") }

// dependency converts a declared dependency. It reports false when the
// coordinates still hold unresolved placeholders.
func (p *pomProject) dependency(d pomDependency, types *session.ArtifactTypes) (artifact.Dependency, bool) {
	group := p.interpolate(d.GroupID)
	name := p.interpolate(d.ArtifactID)
	if group == "" || name == "" || unresolved(group) || unresolved(name) {
		return artifact.Dependency{}, false
	}
	a := types.Artifact(p.interpolate(d.Type), group, name, p.interpolate(d.Version), p.interpolate(d.Classifier))

	scope := p.interpolate(d.Scope)
	if path := p.interpolate(d.SystemPath); path != "" && scope == artifact.ScopeSystem {
		a = a.WithProperty(artifact.PropLocalPath, path)
	}

	dep := artifact.NewDependency(a, scope)
	dep.Optional, _ = strconv.ParseBool(p.interpolate(d.Optional))
	for _, e := range d.Exclusions {
		ex := artifact.Exclusion{Group: p.interpolate(e.GroupID), Name: p.interpolate(e.ArtifactID)}
		if ex.Group == "" {
			ex.Group = "*"
		}
		if ex.Name == "" {
			ex.Name = "*"
		}
		dep.Exclusions = append(dep.Exclusions, ex)
	}
	return dep, true
}

// applyOwnManagement fills a missing version or scope from the POM's own
// dependencyManagement, the way an effective model would.
func applyOwnManagement(d artifact.Dependency, declared pomDependency, managed map[string]artifact.Dependency) artifact.Dependency {
	m, ok := managed[d.Artifact.VersionlessID()]
	if !ok {
		return d
	}
	if d.Artifact.Version == "" {
		d = d.WithArtifact(d.Artifact.WithVersion(m.Artifact.Version))
	}
	if strings.TrimSpace(declared.Scope) == "" && m.Scope != "" {
		d = d.WithScope(m.Scope)
	}
	if len(d.Exclusions) == 0 && len(m.Exclusions) > 0 {
		d = d.WithExclusions(m.Exclusions)
	}
	return d
}

func (p *pomProject) repositories() []repository.RemoteRepository {
	var out []repository.RemoteRepository
	for _, r := range p.Repositories {
		url := p.interpolate(r.URL)
		if url == "" || unresolved(url) {
			continue
		}
		repo := repository.NewRemote(p.interpolate(r.ID), url)
		if l := p.interpolate(r.Layout); l != "" {
			repo.Layout = l
		}
		out = append(out, repo)
	}
	return out
}

// relocated returns the coordinates a relocation points to. Fields the
// relocation leaves empty keep the original's values.
func (p *pomProject) relocated(orig artifact.Artifact) (artifact.Artifact, bool) {
	if p.Relocation == nil {
		return artifact.Artifact{}, false
	}
	to := orig
	if g := p.interpolate(p.Relocation.GroupID); g != "" {
		to.Group = g
	}
	if n := p.interpolate(p.Relocation.ArtifactID); n != "" {
		to.Name = n
	}
	if v := p.interpolate(p.Relocation.Version); v != "" {
		to.Version = v
	}
	if artifact.Equal(to, orig) {
		return artifact.Artifact{}, false
	}
	return to, true
}
