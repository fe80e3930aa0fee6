package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/httputil"
	"github.com/matzehuels/depcollect/pkg/observability"
)

// maxBody bounds response bodies read into memory.
const maxBody = 16 << 20

// Client provides shared HTTP functionality for repository clients: response
// caching, retry with backoff and HTTP observability hooks.
type Client struct {
	http   *http.Client
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewClient creates a Client whose decoded responses are cached for ttl. A
// nil cache disables caching.
func NewClient(c cache.Cache, ttl time.Duration) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:   NewHTTPClient(),
		cache:  c,
		keyer:  cache.NewDefaultKeyer(),
		ttl:    ttl,
		logger: log.New(io.Discard),
	}
}

// WithKeyer replaces the keyer, e.g. with a [cache.ScopedKeyer].
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	if k != nil {
		c.keyer = k
	}
	return c
}

// WithLogger sets the logger used for retry and cache diagnostics.
func (c *Client) WithLogger(l *log.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.http = h
	}
	return c
}

// Keyer returns the client's keyer.
func (c *Client) Keyer() cache.Keyer { return c.keyer }

// Cached loads the value cached under k into v, or runs fetch (with
// retries) and caches what it stored in v. refresh skips the lookup but
// still stores the fresh value. Callers build k with [Client.Keyer].
func (c *Client) Cached(ctx context.Context, k string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if ok, err := cache.GetJSON(ctx, c.cache, k, v); ok {
			return nil
		} else if err != nil {
			c.logger.Debug("cache read failed", "key", k, "err", err)
		}
	}

	attempt := 0
	err := httputil.RetryWithBackoff(ctx, func() error {
		if attempt++; attempt > 1 {
			c.logger.Debug("retrying", "key", k, "attempt", attempt)
		}
		return fetch()
	})
	if err != nil {
		return err
	}
	if err := cache.SetJSON(ctx, c.cache, k, v, c.ttl); err != nil {
		c.logger.Debug("cache write failed", "key", k, "err", err)
	}
	return nil
}

// GetBytes performs an HTTP GET request and returns the body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(io.LimitReader(body, maxBody))
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent())

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}
