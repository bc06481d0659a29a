// Package metrics records layout, cache and HTTP events as Prometheus
// metrics.
//
// [Hooks] implements the three hook interfaces of package observability, so
// registering it is all the instrumentation the pipeline and the server
// need:
//
//	reg := metrics.NewRegistry()
//	m := metrics.New(reg)
//	observability.Register(observability.Hooks{Layout: m, Cache: m, HTTP: m})
//	router.Handle("/metrics", metrics.Handler(reg))
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	terr "github.com/matzehuels/townsquare/pkg/errors"
	"github.com/matzehuels/townsquare/pkg/observability"
)

const namespace = "townsquare"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves the metrics of reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Hooks holds the Prometheus metrics of a process.
type Hooks struct {
	Passes         *prometheus.CounterVec // by outcome: ok or an error code
	PassDuration   prometheus.Histogram
	Participants   prometheus.Histogram
	Rounds         prometheus.Histogram
	Pushes         prometheus.Counter
	Unconverged    prometheus.Counter
	Overlaps       prometheus.Histogram
	MaxZ           prometheus.Histogram
	CyclicPasses   prometheus.Counter
	Renders        *prometheus.CounterVec // by format and outcome
	RenderDuration prometheus.Histogram

	CacheEvents *prometheus.CounterVec // by key type and event
	CacheBytes  *prometheus.CounterVec // by key type

	RequestsTotal   *prometheus.CounterVec   // by method, route and status code
	RequestDuration *prometheus.HistogramVec // by method and route
	RequestErrors   *prometheus.CounterVec   // by method and route
	InFlight        prometheus.Gauge
}

var (
	_ observability.LayoutHooks = (*Hooks)(nil)
	_ observability.CacheHooks  = (*Hooks)(nil)
	_ observability.HTTPHooks   = (*Hooks)(nil)
)

// New creates and registers the metrics on reg.
func New(reg prometheus.Registerer) *Hooks {
	counts := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 15, 20}
	m := &Hooks{
		Passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "layout", Name: "passes_total",
			Help: "Layout passes by outcome.",
		}, []string{"outcome"}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "layout", Name: "pass_duration_seconds",
			Help:    "Duration of layout passes in seconds.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		Participants: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "layout", Name: "participants",
			Help:    "Participants per layout pass.",
			Buckets: []float64{5, 8, 10, 12, 14, 16, 20},
		}),
		Rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "names", Name: "relaxation_rounds",
			Help:    "Colliding relaxation rounds per pass.",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
		}),
		Pushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "names", Name: "pushes_total",
			Help: "Label pushes applied by the name placement optimizer.",
		}),
		Unconverged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "names", Name: "unconverged_total",
			Help: "Passes that hit the round cap with labels still colliding.",
		}),
		Overlaps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "stacking", Name: "overlaps",
			Help:    "Label/token overlaps per pass.",
			Buckets: counts,
		}),
		MaxZ: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "stacking", Name: "max_z",
			Help:    "Highest z-index assigned per pass.",
			Buckets: counts,
		}),
		CyclicPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stacking", Name: "cyclic_total",
			Help: "Passes whose stacking constraints formed a cycle.",
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "render", Name: "artifacts_total",
			Help: "Rendered artifacts by format and outcome.",
		}, []string{"format", "outcome"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "render", Name: "duration_seconds",
			Help:    "Duration of render calls in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "events_total",
			Help: "Cache hits, misses and writes by key type.",
		}, []string{"type", "event"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"type"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "errors_total",
			Help: "HTTP requests answered with an error body.",
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "in_flight_requests",
			Help: "Number of HTTP requests currently being processed.",
		}),
	}

	reg.MustRegister(
		m.Passes, m.PassDuration, m.Participants,
		m.Rounds, m.Pushes, m.Unconverged,
		m.Overlaps, m.MaxZ, m.CyclicPasses,
		m.Renders, m.RenderDuration,
		m.CacheEvents, m.CacheBytes,
		m.RequestsTotal, m.RequestDuration, m.RequestErrors, m.InFlight,
	)
	return m
}

// outcome labels an error by its code.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := terr.GetCode(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}

func (m *Hooks) OnLayoutStart(_ context.Context, participants int) {
	m.Participants.Observe(float64(participants))
}

func (m *Hooks) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	m.Passes.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.PassDuration.Observe(d.Seconds())
	}
}

func (m *Hooks) OnRelaxation(_ context.Context, rounds, pushes int, converged bool) {
	m.Rounds.Observe(float64(rounds))
	m.Pushes.Add(float64(pushes))
	if !converged {
		m.Unconverged.Inc()
	}
}

func (m *Hooks) OnStacking(_ context.Context, overlaps, maxZ int, cyclic bool) {
	m.Overlaps.Observe(float64(overlaps))
	m.MaxZ.Observe(float64(maxZ))
	if cyclic {
		m.CyclicPasses.Inc()
	}
}

func (m *Hooks) OnRenderStart(context.Context, []string) {}

func (m *Hooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	o := outcome(err)
	for _, f := range formats {
		m.Renders.WithLabelValues(f, o).Inc()
	}
	m.RenderDuration.Observe(d.Seconds())
}

func (m *Hooks) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheEvents.WithLabelValues(keyType, "set").Inc()
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Hooks) OnRequest(context.Context, string, string) {
	m.InFlight.Inc()
}

// OnResponse expects route to be a route pattern, not a raw path, to keep
// label cardinality bounded.
func (m *Hooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.InFlight.Dec()
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Hooks) OnError(_ context.Context, method, route string, _ error) {
	m.RequestErrors.WithLabelValues(method, route).Inc()
}
