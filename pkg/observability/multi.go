package observability

import (
	"context"
	"time"
)

// MultiCollect forwards every event to each listener in order. Nil
// listeners are skipped.
func MultiCollect(hooks ...CollectHooks) CollectHooks {
	var m multiCollect
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

type multiCollect []CollectHooks

func (m multiCollect) OnCollectStart(ctx context.Context, root string) {
	for _, h := range m {
		h.OnCollectStart(ctx, root)
	}
}

func (m multiCollect) OnCollectComplete(ctx context.Context, root string, nodes, errs int, d time.Duration, err error) {
	for _, h := range m {
		h.OnCollectComplete(ctx, root, nodes, errs, d, err)
	}
}

func (m multiCollect) OnRangeResolved(ctx context.Context, artifact string, versions int, err error) {
	for _, h := range m {
		h.OnRangeResolved(ctx, artifact, versions, err)
	}
}

func (m multiCollect) OnDescriptorRead(ctx context.Context, artifact string, err error) {
	for _, h := range m {
		h.OnDescriptorRead(ctx, artifact, err)
	}
}

func (m multiCollect) OnNodeReused(ctx context.Context, artifact string) {
	for _, h := range m {
		h.OnNodeReused(ctx, artifact)
	}
}

func (m multiCollect) OnDuplicate(ctx context.Context, artifact string) {
	for _, h := range m {
		h.OnDuplicate(ctx, artifact)
	}
}

func (m multiCollect) OnRelocation(ctx context.Context, from, to string) {
	for _, h := range m {
		h.OnRelocation(ctx, from, to)
	}
}

// MultiCache forwards cache events to each listener in order.
func MultiCache(hooks ...CacheHooks) CacheHooks {
	var m multiCache
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

type multiCache []CacheHooks

func (m multiCache) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheHit(ctx, keyType)
	}
}

func (m multiCache) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (m multiCache) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range m {
		h.OnCacheSet(ctx, keyType, size)
	}
}

// MultiHTTP forwards HTTP events to each listener in order.
func MultiHTTP(hooks ...HTTPHooks) HTTPHooks {
	var m multiHTTP
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

type multiHTTP []HTTPHooks

func (m multiHTTP) OnRequest(ctx context.Context, method, host, path string) {
	for _, h := range m {
		h.OnRequest(ctx, method, host, path)
	}
}

func (m multiHTTP) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	for _, h := range m {
		h.OnResponse(ctx, method, host, path, status, d)
	}
}

func (m multiHTTP) OnError(ctx context.Context, method, host, path string, err error) {
	for _, h := range m {
		h.OnError(ctx, method, host, path, err)
	}
}
