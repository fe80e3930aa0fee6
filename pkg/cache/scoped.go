package cache

import "github.com/matzehuels/depcollect/pkg/artifact"

// ScopedKeyer wraps a Keyer with a prefix, so that several tenants (for
// example one per server API key) can share a backend without seeing each
// other's entries.
//
//	tenant := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) MetadataKey(repoURL, group, name string) string {
	return k.prefix + k.inner.MetadataKey(repoURL, group, name)
}

func (k *ScopedKeyer) DescriptorKey(repoURL string, a artifact.Artifact) string {
	return k.prefix + k.inner.DescriptorKey(repoURL, a)
}
