package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/townsquare/pkg/cache"
	terr "github.com/matzehuels/townsquare/pkg/errors"
	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options. Passes only contend when their options
// share an Engine.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Participants = len(res.Slots)
	result.Stats.Rounds = res.Optimizer.Rounds
	result.Stats.Overlaps = res.Stacking.Overlaps
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"slots", len(res.Slots),
		"rounds", res.Optimizer.Rounds,
		"overlaps", res.Stacking.Overlaps,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, hash, renderHit, err := r.render(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.LayoutHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo runs a layout pass with caching and returns
// cache hit info. Errors carry a pkg/errors code; a pass rejected by a busy
// engine is an *errors.BusyError.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, opts Options) (layout.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, false, err
	}

	// An injected measurer cannot be keyed, so its passes skip the layout cache.
	if opts.Measurer != nil {
		res, err := r.compute(ctx, opts)
		return res, false, err
	}

	cacheKey := r.keyer(opts).LayoutKey(opts.InputHash(), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	res, err := r.compute(ctx, opts)
	if err != nil {
		return layout.Result{}, false, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, opts.layoutTTL()); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		} else {
			opts.Logger.Warn("cache layout", "err", err)
		}
	}

	return res, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, opts Options) (layout.Result, error) {
	res, _, err := r.ComputeLayoutWithCacheInfo(ctx, opts)
	return res, err
}

// compute runs one engine pass and reports it to the layout hooks.
func (r *Runner) compute(ctx context.Context, opts Options) (layout.Result, error) {
	eng := opts.Engine
	if eng == nil {
		eng = layout.New(opts.Config.Engine())
	}

	n := len(opts.Participants)
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, n)
	start := time.Now()

	res, err := eng.Compute(opts.Input(), opts.measurer())
	err = terr.FromLayout(err)
	hooks.OnLayoutComplete(ctx, n, time.Since(start), err)
	if err != nil {
		return layout.Result{}, err
	}

	hooks.OnRelaxation(ctx, res.Optimizer.Rounds, res.Optimizer.Pushes, res.Optimizer.Converged)
	hooks.OnStacking(ctx, res.Stacking.Overlaps, res.Stacking.MaxZ, res.Stacking.Cyclic)

	opts.Logger.Debug("layout pass",
		"slots", n,
		"radius", res.Radius,
		"rounds", res.Optimizer.Rounds,
		"pushes", res.Optimizer.Pushes,
		"measurements", res.Optimizer.Measurements)
	if !res.Optimizer.Converged {
		opts.Logger.Warn("label relaxation hit the round cap", "rounds", res.Optimizer.Rounds)
	}
	if res.Stacking.Cyclic {
		opts.Logger.Warn("stacking constraints contain a cycle",
			"cycles", res.Stacking.Cycles,
			"unresolved", len(res.Stacking.Unresolved))
	}
	return res, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, bool, error) {
	artifacts, _, hit, err := r.render(ctx, res, opts)
	return artifacts, hit, err
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}

	// Compute cache key from layout data; the lease differs on every pass
	keyed := res
	keyed.LeaseID = uuid.Nil
	layoutData, err := json.Marshal(keyed)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.keyer(opts).ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, layoutHash, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	hooks := observability.Layout()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderResult(res, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.keyer(opts).ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, layoutHash, false, nil
}

// keyer returns the keyer for the pass's cache scope.
func (r *Runner) keyer(opts Options) cache.Keyer {
	if opts.Scope == "" {
		return r.Keyer
	}
	return cache.Scope(r.Keyer, "table", opts.Scope)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
