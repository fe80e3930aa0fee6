package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	c := NoopCollectHooks{}
	c.OnCollectStart(ctx, "org.example:app:1.0")
	c.OnCollectComplete(ctx, "org.example:app:1.0", 10, 0, time.Second, nil)
	c.OnRangeResolved(ctx, "org.example:lib:[1,2)", 3, nil)
	c.OnDescriptorRead(ctx, "org.example:lib:1.5", nil)
	c.OnNodeReused(ctx, "org.example:lib:1.5")
	c.OnDuplicate(ctx, "org.example:app:1.0")
	c.OnRelocation(ctx, "old:lib:1.0", "new:lib:1.0")

	ch := NoopCacheHooks{}
	ch.OnCacheHit(ctx, "descriptor")
	ch.OnCacheMiss(ctx, "metadata")
	ch.OnCacheSet(ctx, "http", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "repo.maven.apache.org", "/maven2/g/a/maven-metadata.xml")
	h.OnResponse(ctx, "GET", "repo.maven.apache.org", "/maven2/g/a/maven-metadata.xml", 200, time.Second)
	h.OnError(ctx, "GET", "repo.maven.apache.org", "/maven2/g/a/maven-metadata.xml", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Collect().(NoopCollectHooks); !ok {
		t.Error("Collect() should return NoopCollectHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customCollect := &testCollectHooks{}
	SetCollectHooks(customCollect)
	if Collect() != customCollect {
		t.Error("SetCollectHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Collect().(NoopCollectHooks); !ok {
		t.Error("Reset() should restore NoopCollectHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testCollectHooks{}
	SetCollectHooks(custom)
	SetCollectHooks(nil)

	if Collect() != custom {
		t.Error("SetCollectHooks(nil) should be ignored")
	}

	Reset()
}

func TestMultiFanOut(t *testing.T) {
	ctx := context.Background()
	a, b := &testCollectHooks{}, &testCollectHooks{}

	m := MultiCollect(a, nil, b)
	m.OnNodeReused(ctx, "g:a:1.0")
	m.OnDuplicate(ctx, "g:a:1.0")
	m.OnRelocation(ctx, "g:a:1.0", "g:b:1.0")

	for i, h := range []*testCollectHooks{a, b} {
		if h.events != 3 {
			t.Errorf("listener %d got %d events, want 3", i, h.events)
		}
	}

	ca, cb := &testCacheHooks{}, &testCacheHooks{}
	MultiCache(ca, cb).OnCacheHit(ctx, "http")
	if ca.hits != 1 || cb.hits != 1 {
		t.Errorf("cache hits = %d/%d, want 1/1", ca.hits, cb.hits)
	}

	ha := &testHTTPHooks{}
	MultiHTTP(ha).OnError(ctx, "GET", "host", "/", nil)
	if ha.errors != 1 {
		t.Errorf("http errors = %d, want 1", ha.errors)
	}
}

// Test implementations
type testCollectHooks struct {
	NoopCollectHooks
	events int
}

func (h *testCollectHooks) OnNodeReused(context.Context, string)         { h.events++ }
func (h *testCollectHooks) OnDuplicate(context.Context, string)          { h.events++ }
func (h *testCollectHooks) OnRelocation(context.Context, string, string) { h.events++ }

type testCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string) { h.hits++ }

type testHTTPHooks struct {
	NoopHTTPHooks
	errors int
}

func (h *testHTTPHooks) OnError(context.Context, string, string, string, error) { h.errors++ }
