// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about collection runs, cache operations and
// repository HTTP calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//   - Fan events out to several listeners with [MultiCollect], [MultiCache]
//     and [MultiHTTP]
//
// The prom subpackage implements every interface with Prometheus metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    h := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetCollectHooks(h)
//	    observability.SetCacheHooks(h)
//	    observability.SetHTTPHooks(h)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Collect().OnCollectStart(ctx, root)
//	// ... collect ...
//	observability.Collect().OnCollectComplete(ctx, root, nodes, errs, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Collect Hooks
// =============================================================================

// CollectHooks receives events from dependency collection.
type CollectHooks interface {
	OnCollectStart(ctx context.Context, root string)
	OnCollectComplete(ctx context.Context, root string, nodes, errs int, duration time.Duration, err error)

	// OnRangeResolved fires once per version range resolver call (pool
	// misses only).
	OnRangeResolved(ctx context.Context, artifact string, versions int, err error)

	// OnDescriptorRead fires once per descriptor reader call (pool misses
	// only).
	OnDescriptorRead(ctx context.Context, artifact string, err error)

	// OnNodeReused fires when an already expanded node is shared.
	OnNodeReused(ctx context.Context, artifact string)

	// OnDuplicate fires when a candidate is dropped because an ancestor
	// resolves to the same artifact.
	OnDuplicate(ctx context.Context, artifact string)

	// OnRelocation fires when a descriptor redirects to new coordinates.
	OnRelocation(ctx context.Context, from, to string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCollectHooks is a no-op implementation of CollectHooks.
type NoopCollectHooks struct{}

func (NoopCollectHooks) OnCollectStart(context.Context, string)                                    {}
func (NoopCollectHooks) OnCollectComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopCollectHooks) OnRangeResolved(context.Context, string, int, error)                       {}
func (NoopCollectHooks) OnDescriptorRead(context.Context, string, error)                           {}
func (NoopCollectHooks) OnNodeReused(context.Context, string)                                      {}
func (NoopCollectHooks) OnDuplicate(context.Context, string)                                       {}
func (NoopCollectHooks) OnRelocation(context.Context, string, string)                              {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	collectHooks CollectHooks = NoopCollectHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetCollectHooks registers custom collection hooks.
// This should be called once at application startup before any collection.
func SetCollectHooks(h CollectHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		collectHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Collect returns the registered collection hooks.
func Collect() CollectHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return collectHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	collectHooks = NoopCollectHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
