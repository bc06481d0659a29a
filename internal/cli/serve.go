package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/townsquare/pkg/cache"
	"github.com/matzehuels/townsquare/pkg/metrics"
	"github.com/matzehuels/townsquare/pkg/observability"
	"github.com/matzehuels/townsquare/pkg/server"
)

// probeKey is written and read back by the cache readiness check.
const probeKey = "townsquare:readyz"

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Endpoints:
  GET    /healthz, /readyz, /version
  POST   /v1/layout                layout result as JSON
  POST   /v1/layout.svg            rendered table
  POST   /v1/stacking.dot          stacking constraint graph
  POST   /v1/tables/{table}/layout layout on a long-lived table engine
  DELETE /v1/tables/{table}
  GET    /metrics                  Prometheus metrics (server.metrics)

Results are cached in the backend selected by cache.backend in the config
file (file, redis, mongo or none).`,
		Example: `  townsquare serve --addr :9000
  curl -s localhost:9000/v1/layout -d '{"participants":[{"name":"Ada"},{"name":"Brin"},{"name":"Cato"},{"name":"Dax"},{"name":"Eve"}]}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	backend := cfg.Cache.Backend
	if noCache {
		backend = "none"
	}
	c.Logger.Info("cache backend", "backend", backend)

	srv := server.New(runner, cfg, c.Logger, server.HealthCheck{
		Name:  "cache",
		Check: cacheProbe(runner.Cache),
	})
	if cfg.Server.Metrics {
		srv.MountMetrics(c.registerMetrics())
	}
	return srv.ListenAndServe(ctx, addr)
}

// registerMetrics adds Prometheus hooks next to the log hooks and returns
// the handler serving them.
func (c *CLI) registerMetrics() http.Handler {
	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	l := &logHooks{logger: c.Logger}
	observability.Register(observability.Tee(
		observability.Hooks{Layout: l, Cache: l, HTTP: l},
		observability.Hooks{Layout: m, Cache: m, HTTP: m},
	))
	return metrics.Handler(reg)
}

// cacheProbe round-trips a small entry through the cache.
func cacheProbe(store cache.Cache) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := store.Set(ctx, probeKey, []byte("ok"), 0); err != nil {
			return err
		}
		if _, _, err := store.Get(ctx, probeKey); err != nil {
			return err
		}
		if err := store.Delete(ctx, probeKey); err != nil && !errors.Is(err, cache.ErrNotFound) {
			return err
		}
		return nil
	}
}
