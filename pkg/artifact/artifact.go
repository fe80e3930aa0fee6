package artifact

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/version"
)

const DefaultExtension = "jar" // Extension used when a coordinate omits one

// Well-known property keys.
const (
	PropLocalPath            = "localPath"            // Resolved from a filesystem path, no descriptor
	PropIncludesDependencies = "includesDependencies" // Fat artifact, dependencies are bundled
	PropType                 = "type"                 // Declared packaging type
	PropLanguage             = "language"             // Source ecosystem
)

// Artifact is an immutable artifact coordinate. Use the With* methods to
// derive modified copies; the Properties map must not be mutated in place.
type Artifact struct {
	Group      string            `json:"group"`
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Classifier string            `json:"classifier,omitempty"`
	Extension  string            `json:"extension"`
	Properties map[string]string `json:"properties,omitempty"`
}

// New creates an artifact with the default extension.
func New(group, name, ver string) Artifact {
	return Artifact{Group: group, Name: name, Version: ver, Extension: DefaultExtension}
}

// Parse parses a coordinate of the form
// group:name[:extension[:classifier]]:version.
func Parse(coord string) (Artifact, error) {
	parts := strings.Split(strings.TrimSpace(coord), ":")
	var a Artifact
	switch len(parts) {
	case 3:
		a = Artifact{Group: parts[0], Name: parts[1], Extension: DefaultExtension, Version: parts[2]}
	case 4:
		a = Artifact{Group: parts[0], Name: parts[1], Extension: parts[2], Version: parts[3]}
	case 5:
		a = Artifact{Group: parts[0], Name: parts[1], Extension: parts[2], Classifier: parts[3], Version: parts[4]}
	default:
		return Artifact{}, errors.New(errors.ErrCodeInvalidInput,
			"bad coordinate %q, expected group:name[:extension[:classifier]]:version", coord)
	}
	if a.Group == "" || a.Name == "" || a.Version == "" {
		return Artifact{}, errors.New(errors.ErrCodeInvalidInput, "incomplete coordinate %q", coord)
	}
	if a.Extension == "" {
		a.Extension = DefaultExtension
	}
	if err := a.validate(); err != nil {
		return Artifact{}, err
	}
	return a, nil
}

// validate checks the segments that end up in repository paths and cache
// keys.
func (a Artifact) validate() error {
	if err := errors.ValidateCoordinatePart("group", a.Group); err != nil {
		return err
	}
	if err := errors.ValidateCoordinatePart("name", a.Name); err != nil {
		return err
	}
	if err := errors.ValidateCoordinatePart("extension", a.Extension); err != nil {
		return err
	}
	if a.Classifier != "" {
		if err := errors.ValidateCoordinatePart("classifier", a.Classifier); err != nil {
			return err
		}
	}
	return errors.ValidateVersion(a.Version)
}

// MustParse is like Parse but panics on error.
func MustParse(coord string) Artifact {
	a, err := Parse(coord)
	if err != nil {
		panic(err)
	}
	return a
}

// BaseVersion returns the version with snapshot timestamps normalized.
func (a Artifact) BaseVersion() string { return version.BaseVersion(a.Version) }

// IsSnapshot reports whether the artifact is a development snapshot.
func (a Artifact) IsSnapshot() bool { return version.Parse(a.Version).IsSnapshot() }

// Property returns the named property or "".
func (a Artifact) Property(key string) string { return a.Properties[key] }

// HasProperty reports whether the property is set to a non-empty value.
func (a Artifact) HasProperty(key string) bool { return a.Properties[key] != "" }

// WithVersion returns a copy pinned to ver.
func (a Artifact) WithVersion(ver string) Artifact {
	a.Version = ver
	return a
}

// WithProperties returns a copy whose properties are replaced by props.
func (a Artifact) WithProperties(props map[string]string) Artifact {
	a.Properties = maps.Clone(props)
	return a
}

// WithProperty returns a copy with a single property set.
func (a Artifact) WithProperty(key, value string) Artifact {
	props := maps.Clone(a.Properties)
	if props == nil {
		props = make(map[string]string, 1)
	}
	props[key] = value
	a.Properties = props
	return a
}

// Identity is the "same artifact" key: concrete versions that share a base
// version (timestamped snapshots of one SNAPSHOT) are the same artifact.
type Identity struct {
	Group       string
	Name        string
	BaseVersion string
	Extension   string
	Classifier  string
}

// Identity returns the artifact's identity key.
func (a Artifact) Identity() Identity {
	return Identity{
		Group:       a.Group,
		Name:        a.Name,
		BaseVersion: a.BaseVersion(),
		Extension:   a.Extension,
		Classifier:  a.Classifier,
	}
}

// Same reports whether a and b are the same artifact by identity.
func Same(a, b Artifact) bool { return a.Identity() == b.Identity() }

// VersionlessID returns group:name:extension[:classifier], used to match
// declared dependencies against descriptor and managed entries.
func (a Artifact) VersionlessID() string {
	var b strings.Builder
	b.WriteString(a.Group)
	b.WriteByte(':')
	b.WriteString(a.Name)
	b.WriteByte(':')
	b.WriteString(a.Extension)
	if a.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(a.Classifier)
	}
	return b.String()
}

// String returns the coordinate in the form accepted by Parse.
func (a Artifact) String() string {
	var b strings.Builder
	b.WriteString(a.Group)
	b.WriteByte(':')
	b.WriteString(a.Name)
	if a.Extension != DefaultExtension || a.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(a.Extension)
	}
	if a.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(a.Classifier)
	}
	b.WriteByte(':')
	b.WriteString(a.Version)
	return b.String()
}

// Key returns an exact signature over every field, properties included.
func (a Artifact) Key() string {
	var b strings.Builder
	b.WriteString(a.Group)
	b.WriteByte(0)
	b.WriteString(a.Name)
	b.WriteByte(0)
	b.WriteString(a.Version)
	b.WriteByte(0)
	b.WriteString(a.Classifier)
	b.WriteByte(0)
	b.WriteString(a.Extension)
	for _, k := range slices.Sorted(maps.Keys(a.Properties)) {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(a.Properties[k])
	}
	return b.String()
}

// Equal reports whether a and b are field-for-field equal.
func Equal(a, b Artifact) bool {
	return a.Group == b.Group && a.Name == b.Name && a.Version == b.Version &&
		a.Classifier == b.Classifier && a.Extension == b.Extension &&
		maps.Equal(a.Properties, b.Properties)
}
