package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by New.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// Dir is the FileCache directory. Empty means DefaultDir.
	Dir string `toml:"dir"`

	// MaxEntries bounds the MemoryCache.
	MaxEntries int `toml:"max_entries"`

	// URL is the Redis or MongoDB connection string.
	URL string `toml:"url"`

	// Prefix namespaces keys. Redis applies it itself; callers wrap their
	// Keyer in a ScopedKeyer for the other backends.
	Prefix string `toml:"prefix"`

	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// New builds the configured backend. An empty backend means file.
func New(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendMemory:
		return NewMemoryCache(cfg.MaxEntries)
	case BackendRedis:
		return NewRedisCache(ctx, cfg.URL, cfg.Prefix)
	case BackendMongo:
		return NewMongoCache(ctx, cfg.URL, cfg.Database, cfg.Collection)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
