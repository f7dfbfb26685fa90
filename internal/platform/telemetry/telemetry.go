// Package telemetry exposes Prometheus metrics for generation runs, sink
// deliveries and the HTTP API.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// TelemetryConfig holds all configuration for the telemetry provider.
type TelemetryConfig struct {
	Namespace      string
	ServiceVersion string
	Environment    string
	MetricsEnabled *bool // nil = use default (true)
	RuntimeMetrics bool  // register Go and process collectors
}

// metricsOn returns whether metrics are enabled (defaults to true).
func (c *TelemetryConfig) metricsOn() bool {
	if c.MetricsEnabled == nil {
		return true
	}
	return *c.MetricsEnabled
}

func (c *TelemetryConfig) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = "oncogen"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.0"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// BoolPtr is a helper to create a *bool for TelemetryConfig fields.
func BoolPtr(b bool) *bool {
	return &b
}

// ---------------------------------------------------------------------------
// Provider
// ---------------------------------------------------------------------------

// durationBuckets suit in-memory generation, which finishes in microseconds
// to a few milliseconds.
var durationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// TelemetryProvider owns a private registry so tests and embedded servers do
// not collide on the global one.
type TelemetryProvider struct {
	cfg      TelemetryConfig
	registry *prometheus.Registry

	bundles       *prometheus.CounterVec
	bundleEntries *prometheus.CounterVec
	bundleLatency *prometheus.HistogramVec
	failures      *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	httpRequests  *prometheus.HistogramVec
	httpActive    prometheus.Gauge
}

// NewTelemetryProvider creates and registers every collector.
func NewTelemetryProvider(cfg TelemetryConfig) *TelemetryProvider {
	cfg.applyDefaults()
	ns := cfg.Namespace
	constLabels := prometheus.Labels{"environment": cfg.Environment, "version": cfg.ServiceVersion}

	tp := &TelemetryProvider{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		bundles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "bundles_generated_total",
			Help: "Transaction bundles generated.", ConstLabels: constLabels,
		}, []string{"kind"}),
		bundleEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "bundle_entries_total",
			Help: "Resources placed into generated bundles.", ConstLabels: constLabels,
		}, []string{"kind"}),
		bundleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "bundle_generation_seconds",
			Help: "Time to build and validate one bundle.", ConstLabels: constLabels,
			Buckets: durationBuckets,
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "bundle_failures_total",
			Help: "Generation requests that returned an error.", ConstLabels: constLabels,
		}, []string{"kind"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "documents_written_total",
			Help: "Documents handed to an output sink.", ConstLabels: constLabels,
		}, []string{"sink", "result"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests.", ConstLabels: constLabels,
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "http_active_requests",
			Help: "HTTP requests in flight.", ConstLabels: constLabels,
		}),
	}

	tp.registry.MustRegister(
		tp.bundles, tp.bundleEntries, tp.bundleLatency, tp.failures,
		tp.deliveries, tp.httpRequests, tp.httpActive,
	)
	if cfg.RuntimeMetrics {
		tp.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return tp
}

// Registry exposes the underlying registry for gathering in tests.
func (tp *TelemetryProvider) Registry() *prometheus.Registry {
	return tp.registry
}

// BundleGenerated records one successful generation.
func (tp *TelemetryProvider) BundleGenerated(kind string, entries int, elapsed time.Duration) {
	if !tp.cfg.metricsOn() {
		return
	}
	tp.bundles.WithLabelValues(kind).Inc()
	tp.bundleEntries.WithLabelValues(kind).Add(float64(entries))
	tp.bundleLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// BundleFailed records one failed generation.
func (tp *TelemetryProvider) BundleFailed(kind string) {
	if !tp.cfg.metricsOn() {
		return
	}
	tp.failures.WithLabelValues(kind).Inc()
}

// DocumentWritten records a sink delivery.
func (tp *TelemetryProvider) DocumentWritten(sink string, err error) {
	if !tp.cfg.metricsOn() {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	tp.deliveries.WithLabelValues(sink, result).Inc()
}

// ---------------------------------------------------------------------------
// MetricsMiddleware
// ---------------------------------------------------------------------------

// MetricsMiddleware returns an Echo middleware that records HTTP server metrics.
func (tp *TelemetryProvider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !tp.cfg.metricsOn() {
				return next(c)
			}

			tp.httpActive.Inc()
			defer tp.httpActive.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			// Route pattern keeps label cardinality bounded.
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			tp.httpRequests.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// ---------------------------------------------------------------------------
// PrometheusHandler
// ---------------------------------------------------------------------------

// PrometheusHandler serves the registry in the Prometheus text format.
func (tp *TelemetryProvider) PrometheusHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(tp.registry, promhttp.HandlerOpts{Registry: tp.registry}))
}
