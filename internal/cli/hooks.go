package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks writes pipeline, cache and HTTP events to the debug log. Failures
// are logged by the commands themselves.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLayoutStart(_ context.Context, participants int) {
	h.logger.Debug("layout pass started", "participants", participants)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, participants int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout pass failed", "participants", participants, "err", err)
		return
	}
	h.logger.Debug("layout pass finished", "participants", participants, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnRelaxation(_ context.Context, rounds, pushes int, converged bool) {
	h.logger.Debug("labels relaxed", "rounds", rounds, "pushes", pushes, "converged", converged)
}

func (h *logHooks) OnStacking(_ context.Context, overlaps, maxZ int, cyclic bool) {
	h.logger.Debug("stacking resolved", "overlaps", overlaps, "max_z", maxZ, "cyclic", cyclic)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("rendering", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("rendered", "formats", formats, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {}

func (h *logHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Debug("request error", "method", method, "path", path, "err", err)
}
