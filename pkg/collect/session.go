package collect

import (
	"github.com/matzehuels/depcollect/pkg/session"
	"github.com/matzehuels/depcollect/pkg/transform"
)

// Session bundles the run configuration with the policies that shape the
// graph. Nil policy fields select everything, manage nothing, traverse
// everything and leave the graph untransformed.
type Session struct {
	*session.Session

	Selector    Selector
	Manager     Manager
	Traverser   Traverser
	Transformer transform.Transformer
}

// NewSession wraps cfg with default policies. A nil cfg gets an empty
// configuration.
func NewSession(cfg *session.Session) *Session {
	if cfg == nil {
		cfg = session.New(nil)
	}
	return &Session{Session: cfg}
}

func (s *Session) withDefaults() *Session {
	var c Session
	if s != nil {
		c = *s
	}
	if c.Session == nil {
		c.Session = session.New(nil)
	}
	if c.Selector == nil {
		c.Selector = acceptAll{}
	}
	if c.Manager == nil {
		c.Manager = noManagement{}
	}
	if c.Traverser == nil {
		c.Traverser = traverseAll{}
	}
	if c.Transformer == nil {
		c.Transformer = transform.Noop{}
	}
	return &c
}
