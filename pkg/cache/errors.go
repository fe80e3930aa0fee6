package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")

	// ErrClosed is returned by operations on a closed MemoryCache.
	ErrClosed = errors.New("cache closed")
)
