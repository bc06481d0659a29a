package observability

import (
	"context"
	"time"
)

// Tee combines several bundles into one whose hooks deliver every event to
// each non-nil member, in argument order.
func Tee(bundles ...Hooks) Hooks {
	var (
		l multiLayout
		c multiCache
		h multiHTTP
	)
	for _, b := range bundles {
		if b.Layout != nil {
			l = append(l, b.Layout)
		}
		if b.Cache != nil {
			c = append(c, b.Cache)
		}
		if b.HTTP != nil {
			h = append(h, b.HTTP)
		}
	}
	return Hooks{Layout: l, Cache: c, HTTP: h}
}

type multiLayout []LayoutHooks

func (m multiLayout) OnLayoutStart(ctx context.Context, n int) {
	for _, h := range m {
		h.OnLayoutStart(ctx, n)
	}
}

func (m multiLayout) OnLayoutComplete(ctx context.Context, n int, d time.Duration, err error) {
	for _, h := range m {
		h.OnLayoutComplete(ctx, n, d, err)
	}
}

func (m multiLayout) OnRelaxation(ctx context.Context, rounds, pushes int, converged bool) {
	for _, h := range m {
		h.OnRelaxation(ctx, rounds, pushes, converged)
	}
}

func (m multiLayout) OnStacking(ctx context.Context, overlaps, maxZ int, cyclic bool) {
	for _, h := range m {
		h.OnStacking(ctx, overlaps, maxZ, cyclic)
	}
}

func (m multiLayout) OnRenderStart(ctx context.Context, formats []string) {
	for _, h := range m {
		h.OnRenderStart(ctx, formats)
	}
}

func (m multiLayout) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	for _, h := range m {
		h.OnRenderComplete(ctx, formats, d, err)
	}
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

type multiHTTP []HTTPHooks

func (m multiHTTP) OnRequest(ctx context.Context, method, path string) {
	for _, h := range m {
		h.OnRequest(ctx, method, path)
	}
}

func (m multiHTTP) OnResponse(ctx context.Context, method, path string, status int, d time.Duration) {
	for _, h := range m {
		h.OnResponse(ctx, method, path, status, d)
	}
}

func (m multiHTTP) OnError(ctx context.Context, method, path string, err error) {
	for _, h := range m {
		h.OnError(ctx, method, path, err)
	}
}
