// Package observability lets callers watch layout passes, cache traffic and
// API requests without tying the code to a metrics or tracing backend.
//
// Hooks are registered once at startup, as a bundle:
//
//	restore := observability.Register(observability.Hooks{
//	    Layout: myLayoutHooks,
//	    Cache:  myCacheHooks,
//	})
//	defer restore()
//
// and emitted from the pipeline and the HTTP server:
//
//	observability.Layout().OnLayoutStart(ctx, len(participants))
//
// The layout engine itself never calls hooks.
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// LayoutHooks receives events from the layout pipeline.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, participants int)
	OnLayoutComplete(ctx context.Context, participants int, duration time.Duration, err error)

	// OnRelaxation reports the name placement optimizer's work for a pass.
	OnRelaxation(ctx context.Context, rounds, pushes int, converged bool)
	// OnStacking reports the stacking resolver's outcome for a pass.
	OnStacking(ctx context.Context, overlaps, maxZ int, cyclic bool)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations. keyType is "layout" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
	// OnError records a request that was answered with an error body.
	OnError(ctx context.Context, method, path string, err error)
}

// NoopLayoutHooks ignores every layout event. Embed it to implement only
// some of the methods.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, int, time.Duration, error)      {}
func (NoopLayoutHooks) OnRelaxation(context.Context, int, int, bool)                     {}
func (NoopLayoutHooks) OnStacking(context.Context, int, int, bool)                       {}
func (NoopLayoutHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopLayoutHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// Hooks bundles one implementation per event category.
type Hooks struct {
	Layout LayoutHooks
	Cache  CacheHooks
	HTTP   HTTPHooks
}

func noop() *Hooks {
	return &Hooks{Layout: NoopLayoutHooks{}, Cache: NoopCacheHooks{}, HTTP: NoopHTTPHooks{}}
}

var (
	// current is read on every event; writers copy it under mu.
	current atomic.Pointer[Hooks]
	mu      sync.Mutex
)

func init() { current.Store(noop()) }

// Register installs the non-nil members of h, keeping the registered hooks
// for nil members. The returned function restores the hooks that were in
// place before the call.
func Register(h Hooks) (restore func()) {
	mu.Lock()
	defer mu.Unlock()

	prev := current.Load()
	next := *prev
	if h.Layout != nil {
		next.Layout = h.Layout
	}
	if h.Cache != nil {
		next.Cache = h.Cache
	}
	if h.HTTP != nil {
		next.HTTP = h.HTTP
	}
	current.Store(&next)

	return func() {
		mu.Lock()
		defer mu.Unlock()
		current.Store(prev)
	}
}

// Reset restores the no-op hooks.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current.Store(noop())
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks { return current.Load().Layout }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().Cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().HTTP }
