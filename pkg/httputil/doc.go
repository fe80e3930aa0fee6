// Package httputil provides retry helpers for repository HTTP clients.
//
// [Retry] re-runs an operation with exponential backoff while it keeps
// failing with a [RetryableError]. Any other error ends the loop at once, so
// callers decide what is transient by wrapping:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// [RetryWithBackoff] uses 3 attempts starting at one second. Response caching
// lives in pkg/cache.
package httputil
