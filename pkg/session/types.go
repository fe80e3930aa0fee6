package session

import (
	"sync"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

// ArtifactType describes a packaging type.
type ArtifactType struct {
	ID                   string
	Extension            string
	Classifier           string
	Language             string
	IncludesDependencies bool // the artifact bundles its dependencies
}

// Properties returns the artifact properties implied by the type.
func (t ArtifactType) Properties() map[string]string {
	props := map[string]string{artifact.PropType: t.ID}
	if t.Language != "" {
		props[artifact.PropLanguage] = t.Language
	}
	if t.IncludesDependencies {
		props[artifact.PropIncludesDependencies] = "true"
	}
	return props
}

// ArtifactTypes is a concurrency-safe registry of packaging types.
type ArtifactTypes struct {
	mu    sync.RWMutex
	types map[string]ArtifactType
}

// NewArtifactTypes creates a registry holding types.
func NewArtifactTypes(types ...ArtifactType) *ArtifactTypes {
	r := &ArtifactTypes{types: make(map[string]ArtifactType, len(types))}
	for _, t := range types {
		r.Add(t)
	}
	return r
}

// DefaultArtifactTypes returns a registry with the standard Maven types.
func DefaultArtifactTypes() *ArtifactTypes {
	return NewArtifactTypes(
		ArtifactType{ID: "pom", Extension: "pom", Language: "none"},
		ArtifactType{ID: "jar", Extension: "jar", Language: "java"},
		ArtifactType{ID: "maven-plugin", Extension: "jar", Language: "java"},
		ArtifactType{ID: "ejb", Extension: "jar", Language: "java"},
		ArtifactType{ID: "ejb-client", Extension: "jar", Classifier: "client", Language: "java"},
		ArtifactType{ID: "test-jar", Extension: "jar", Classifier: "tests", Language: "java"},
		ArtifactType{ID: "javadoc", Extension: "jar", Classifier: "javadoc", Language: "java"},
		ArtifactType{ID: "java-source", Extension: "jar", Classifier: "sources", Language: "java"},
		ArtifactType{ID: "war", Extension: "war", Language: "java", IncludesDependencies: true},
		ArtifactType{ID: "ear", Extension: "ear", Language: "java", IncludesDependencies: true},
		ArtifactType{ID: "rar", Extension: "rar", Language: "java", IncludesDependencies: true},
	)
}

// Add registers or replaces a type.
func (r *ArtifactTypes) Add(t ArtifactType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.ID] = t
}

// Get returns the named type. Unknown types map to an extension equal to
// their id.
func (r *ArtifactTypes) Get(id string) ArtifactType {
	if id == "" {
		id = "jar"
	}
	r.mu.RLock()
	t, ok := r.types[id]
	r.mu.RUnlock()
	if !ok {
		return ArtifactType{ID: id, Extension: id}
	}
	return t
}

// Artifact builds an artifact of the named type. An explicit classifier
// overrides the type's default classifier.
func (r *ArtifactTypes) Artifact(typ, group, name, ver, classifier string) artifact.Artifact {
	t := r.Get(typ)
	if classifier == "" {
		classifier = t.Classifier
	}
	return artifact.Artifact{
		Group:      group,
		Name:       name,
		Version:    ver,
		Classifier: classifier,
		Extension:  t.Extension,
		Properties: t.Properties(),
	}
}
