package policy

import (
	"strconv"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
)

// FatArtifactTraverser does not expand artifacts that bundle their own
// dependencies (artifact property "includesDependencies" set to true).
type FatArtifactTraverser struct{}

func (FatArtifactTraverser) Traverse(d artifact.Dependency) bool {
	b, _ := strconv.ParseBool(d.Artifact.Property(artifact.PropIncludesDependencies))
	return !b
}

func (t FatArtifactTraverser) DeriveChild(collect.Context) collect.Traverser { return t }
func (FatArtifactTraverser) PolicyKey() string                               { return "" }

// StaticTraverser answers every query the same way.
type StaticTraverser bool

func (t StaticTraverser) Traverse(artifact.Dependency) bool             { return bool(t) }
func (t StaticTraverser) DeriveChild(collect.Context) collect.Traverser { return t }
func (t StaticTraverser) PolicyKey() string                             { return strconv.FormatBool(bool(t)) }
