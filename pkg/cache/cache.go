// Package cache provides byte caches for repository responses and decoded
// descriptors.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [MemoryCache]: bounded in-process LRU with per-entry TTL
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// [New] builds a backend from a [Config]. Wrap any backend with
// [Instrument] to report hits and misses to the registered
// observability hooks.
//
// # Keys
//
// A [Keyer] derives keys for the three things worth caching: raw HTTP
// responses, version metadata per artifact, and decoded descriptors. Use
// [NewScopedKeyer] to isolate tenants sharing one backend.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/observability"
)

// Cache stores opaque values by key. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero means the entry does not expire.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// MetadataKey keys the version list of group:name in a repository.
	MetadataKey(repoURL, group, name string) string

	// DescriptorKey keys the decoded descriptor of a in a repository.
	DescriptorKey(repoURL string, a artifact.Artifact) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) MetadataKey(repoURL, group, name string) string {
	return repoKey("metadata", repoURL, group, name)
}

func (DefaultKeyer) DescriptorKey(repoURL string, a artifact.Artifact) string {
	return repoKey("descriptor", repoURL, a.Key())
}

// DefaultDir returns the per-user cache directory, ~/.cache/depcollect.
func DefaultDir() (string, error) {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "depcollect"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "depcollect"), nil
}

// GetJSON decodes a cached JSON value into v. Undecodable entries are
// deleted and reported as misses.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON stores v as JSON.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// Instrument reports every Get and Set on c to the registered cache hooks.
// The key type is the part of the key before the first colon.
func Instrument(c Cache) Cache {
	return &instrumented{Cache: c}
}

type instrumented struct {
	Cache
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
