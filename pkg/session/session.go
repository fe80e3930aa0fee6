// Package session holds the per-run settings shared by every component
// taking part in one dependency collection.
//
// A [Session] carries free-form configuration properties, the offline flag
// and an [ArtifactTypes] registry that maps packaging types ("jar",
// "test-jar", "pom", ...) to extension, classifier and traversal hints.
// Policies read the session through the collection context; descriptor
// readers use the type registry when turning declared dependency types
// into artifact coordinates.
//
// # Usage
//
//	sess := session.New(map[string]string{"depcollect.scopes.excluded": "test,provided"})
//	sess.Offline = true
//
//	t := sess.Types().Get("test-jar")
//	t.Extension  // "jar"
//	t.Classifier // "tests"
package session

import (
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Well-known configuration properties.
const (
	PropExcludedScopes  = "depcollect.scopes.excluded" // comma separated
	PropIncludeOptional = "depcollect.optional.include"
	PropVerbose         = "depcollect.verbose"
)

// Session is the configuration of one collection run. It is read-only once
// collection starts.
type Session struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties,omitempty"`
	Offline    bool              `json:"offline,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`

	types *ArtifactTypes
}

// New creates a session with a random ID and the default type registry.
func New(props map[string]string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Properties: maps.Clone(props),
		CreatedAt:  time.Now(),
		types:      DefaultArtifactTypes(),
	}
}

// Types returns the artifact type registry. A nil session or a session
// created as a literal gets the default registry.
func (s *Session) Types() *ArtifactTypes {
	if s == nil || s.types == nil {
		return DefaultArtifactTypes()
	}
	return s.types
}

// WithTypes returns a copy of s using reg.
func (s *Session) WithTypes(reg *ArtifactTypes) *Session {
	c := *s
	c.types = reg
	return &c
}

// Property returns the named property or def when unset.
func (s *Session) Property(key, def string) string {
	if s == nil {
		return def
	}
	if v, ok := s.Properties[key]; ok {
		return v
	}
	return def
}

// BoolProperty parses the named property as a bool.
func (s *Session) BoolProperty(key string, def bool) bool {
	b, err := strconv.ParseBool(s.Property(key, ""))
	if err != nil {
		return def
	}
	return b
}

// ListProperty splits the named property at commas, trimming blanks.
func (s *Session) ListProperty(key string) []string {
	var out []string
	for _, v := range strings.Split(s.Property(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
