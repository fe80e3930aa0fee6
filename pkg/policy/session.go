package policy

import (
	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/session"
)

// DefaultExcludedScopes are dropped from transitive dependencies unless the
// session overrides them.
var DefaultExcludedScopes = []string{artifact.ScopeTest, artifact.ScopeProvided}

// NewSession wraps cfg with the standard policies: scope filtering (from
// session.PropExcludedScopes), optional filtering (off when
// session.PropIncludeOptional is true), exclusions, classic dependency
// management and fat-artifact traversal.
func NewSession(cfg *session.Session) *collect.Session {
	sess := collect.NewSession(cfg)

	excluded := sess.ListProperty(session.PropExcludedScopes)
	if _, set := sess.Properties[session.PropExcludedScopes]; !set {
		excluded = DefaultExcludedScopes
	}
	var optional collect.Selector
	if !sess.BoolProperty(session.PropIncludeOptional, false) {
		optional = NewOptionalSelector()
	}

	sess.Selector = And(NewScopeSelector(excluded...), optional, NewExclusionSelector())
	sess.Manager = NewClassicManager()
	sess.Traverser = FatArtifactTraverser{}
	return sess
}
