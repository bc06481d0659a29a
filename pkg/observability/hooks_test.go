package observability

import (
	"context"
	"testing"
	"time"
)

type countingLayout struct {
	NoopLayoutHooks
	starts int
}

func (c *countingLayout) OnLayoutStart(context.Context, int) { c.starts++ }

type countingCache struct {
	NoopCacheHooks
	hits int
}

func (c *countingCache) OnCacheHit(context.Context, string) { c.hits++ }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	Layout().OnLayoutStart(ctx, 8)
	Layout().OnLayoutComplete(ctx, 8, time.Second, nil)
	Layout().OnRelaxation(ctx, 2, 5, true)
	Layout().OnStacking(ctx, 1, 1, false)
	Layout().OnRenderStart(ctx, []string{"svg"})
	Layout().OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheSet(ctx, "artifact", 1024)
	HTTP().OnRequest(ctx, "POST", "/v1/layout")
	HTTP().OnResponse(ctx, "POST", "/v1/layout", 200, time.Second)
	HTTP().OnError(ctx, "POST", "/v1/layout", nil)

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Errorf("Layout() = %T, want NoopLayoutHooks", Layout())
	}
}

func TestRegisterAndRestore(t *testing.T) {
	Reset()
	ctx := context.Background()

	layout := &countingLayout{}
	restoreLayout := Register(Hooks{Layout: layout})
	cache := &countingCache{}
	restoreCache := Register(Hooks{Cache: cache})

	Layout().OnLayoutStart(ctx, 5)
	Cache().OnCacheHit(ctx, "layout")
	if layout.starts != 1 || cache.hits != 1 {
		t.Fatalf("events not delivered: starts=%d hits=%d", layout.starts, cache.hits)
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("a nil member should keep the registered hooks")
	}

	restoreCache()
	if Layout() != layout {
		t.Error("restoring the cache hooks dropped the layout hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("restore did not bring back the previous cache hooks")
	}

	restoreLayout()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("restore did not bring back the previous layout hooks")
	}
}

func TestReset(t *testing.T) {
	Register(Hooks{Layout: &countingLayout{}, Cache: &countingCache{}})
	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestTee(t *testing.T) {
	ctx := context.Background()
	a, b := &countingLayout{}, &countingLayout{}
	cache := &countingCache{}

	tee := Tee(Hooks{Layout: a, Cache: cache}, Hooks{Layout: b})
	tee.Layout.OnLayoutStart(ctx, 5)
	tee.Cache.OnCacheHit(ctx, "layout")
	tee.HTTP.OnRequest(ctx, "GET", "/healthz")

	if a.starts != 1 || b.starts != 1 {
		t.Errorf("starts = %d, %d; want 1, 1", a.starts, b.starts)
	}
	if cache.hits != 1 {
		t.Errorf("hits = %d, want 1", cache.hits)
	}
}
