// Package integrations provides the HTTP plumbing shared by repository
// clients.
//
// [Client] wraps an [http.Client] with:
//
//   - response caching through any [cache.Cache] backend, keyed by a
//     [cache.Keyer] under a per-repository namespace
//   - retry with exponential backoff for transient failures (network
//     errors, 5xx and 429 responses) via [httputil.Retry]
//   - default headers and a depcollect User-Agent
//   - request/response events reported to [observability.HTTP]
//
// Status handling: 404 and 410 map to [ErrNotFound]; other failures wrap
// [ErrNetwork]. Repository-specific clients live in subpackages, currently
// [github.com/matzehuels/depcollect/pkg/integrations/maven].
package integrations
