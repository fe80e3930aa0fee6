package artifact

import (
	"slices"
	"strconv"
	"strings"
)

// Dependency scopes.
const (
	ScopeCompile  = "compile"
	ScopeProvided = "provided"
	ScopeRuntime  = "runtime"
	ScopeTest     = "test"
	ScopeSystem   = "system"
	ScopeImport   = "import"
)

// Dependency is an immutable dependency declaration. The same value may be
// shared by many edges; every With* method returns a copy.
type Dependency struct {
	Artifact   Artifact    `json:"artifact"`
	Scope      string      `json:"scope"`
	Optional   bool        `json:"optional,omitempty"`
	Exclusions []Exclusion `json:"exclusions,omitempty"`
}

// NewDependency creates a dependency; an empty scope becomes compile.
func NewDependency(a Artifact, scope string) Dependency {
	if scope == "" {
		scope = ScopeCompile
	}
	return Dependency{Artifact: a, Scope: scope}
}

// WithArtifact returns a copy referencing a.
func (d Dependency) WithArtifact(a Artifact) Dependency {
	d.Artifact = a
	d.Exclusions = slices.Clone(d.Exclusions)
	return d
}

// WithScope returns a copy with the given scope.
func (d Dependency) WithScope(scope string) Dependency {
	d.Scope = scope
	d.Exclusions = slices.Clone(d.Exclusions)
	return d
}

// WithOptional returns a copy with the optional flag set.
func (d Dependency) WithOptional(optional bool) Dependency {
	d.Optional = optional
	d.Exclusions = slices.Clone(d.Exclusions)
	return d
}

// WithExclusions returns a copy owning its own exclusion slice.
func (d Dependency) WithExclusions(ex []Exclusion) Dependency {
	d.Exclusions = slices.Clone(ex)
	return d
}

// Excludes reports whether any exclusion matches a.
func (d Dependency) Excludes(a Artifact) bool {
	for _, e := range d.Exclusions {
		if e.Matches(a) {
			return true
		}
	}
	return false
}

func (d Dependency) String() string {
	s := d.Artifact.String() + " (" + d.Scope
	if d.Optional {
		s += "?"
	}
	return s + ")"
}

// Key returns an exact signature over the dependency.
func (d Dependency) Key() string {
	var b strings.Builder
	b.WriteString(d.Artifact.Key())
	b.WriteByte(1)
	b.WriteString(d.Scope)
	b.WriteByte(1)
	b.WriteString(strconv.FormatBool(d.Optional))
	for _, e := range d.Exclusions {
		b.WriteByte(1)
		b.WriteString(e.String())
	}
	return b.String()
}

// Exclusion removes matching transitive dependencies. Any field may be "*".
type Exclusion struct {
	Group      string `json:"group"`
	Name       string `json:"name"`
	Classifier string `json:"classifier,omitempty"`
	Extension  string `json:"extension,omitempty"`
}

// Matches reports whether the exclusion applies to a. Empty classifier and
// extension fields match anything.
func (e Exclusion) Matches(a Artifact) bool {
	return matchField(e.Group, a.Group) &&
		matchField(e.Name, a.Name) &&
		(e.Classifier == "" || matchField(e.Classifier, a.Classifier)) &&
		(e.Extension == "" || matchField(e.Extension, a.Extension))
}

func (e Exclusion) String() string {
	return e.Group + ":" + e.Name + ":" + e.Classifier + ":" + e.Extension
}

func matchField(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

// ParseExclusion parses "group:name" with optional ":classifier:extension".
func ParseExclusion(s string) (Exclusion, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 4 || parts[0] == "" || parts[1] == "" {
		return Exclusion{}, false
	}
	e := Exclusion{Group: parts[0], Name: parts[1]}
	if len(parts) > 2 {
		e.Classifier = parts[2]
	}
	if len(parts) > 3 {
		e.Extension = parts[3]
	}
	return e, true
}
