package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/depcollect/pkg/buildinfo"
	errs "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/httputil"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist in the repository.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for repository requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// UserAgent identifies the client to repositories.
func UserAgent() string { return buildinfo.UserAgent() }

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &httputil.RetryableError{
			Err:   &errs.RateLimitedError{RetryAfter: secs},
			After: time.Duration(secs) * time.Second,
		}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// JoinURL appends slash-separated path segments to a base URL, escaping
// each segment.
func JoinURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, s := range segments {
		for _, part := range strings.Split(s, "/") {
			if part == "" {
				continue
			}
			b.WriteByte('/')
			b.WriteString(url.PathEscape(part))
		}
	}
	return b.String()
}
