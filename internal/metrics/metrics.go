// Package metrics exposes Prometheus instruments for the planner and its
// HTTP surfaces. All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	decisionsTotal    *prometheus.CounterVec
	forecastDuration  *prometheus.HistogramVec
	forecastFailures  *prometheus.CounterVec
	currentStock      prometheus.Gauge
	projectedBalance  prometheus.Gauge
}

// New registers every instrument on a private registry, so several
// instances can coexist in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordering_decisions_total",
			Help: "Ordering decisions issued, by status.",
		}, []string{"status"}),
		forecastDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forecast_fit_duration_seconds",
			Help:    "Model fit and predict duration by series.",
			Buckets: prometheus.DefBuckets,
		}, []string{"series"}),
		forecastFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_failures_total",
			Help: "Forecast failures by series and reason.",
		}, []string{"series", "reason"}),
		currentStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_current_stock_kg",
			Help: "Current on-hand stock in kilograms at the last evaluation.",
		}),
		projectedBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_projected_balance_kg",
			Help: "Projected end-of-horizon balance in kilograms at the last evaluation.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.decisionsTotal,
		m.forecastDuration,
		m.forecastFailures,
		m.currentStock,
		m.projectedBalance,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler instruments a net/http handler under a fixed route label.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.ObserveRequest(route, recorder.status, time.Since(start))
	})
}

func (m *Metrics) Decision(status string) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ForecastDuration(series string, d time.Duration) {
	if m == nil {
		return
	}
	m.forecastDuration.WithLabelValues(series).Observe(d.Seconds())
}

func (m *Metrics) ForecastFailure(series, reason string) {
	if m == nil {
		return
	}
	m.forecastFailures.WithLabelValues(series, reason).Inc()
}

func (m *Metrics) Projection(currentStock, balance float64) {
	if m == nil {
		return
	}
	m.currentStock.Set(currentStock)
	m.projectedBalance.Set(balance)
}
