package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry with the engine's collectors. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	claims          *prometheus.CounterVec
	computeDuration *prometheus.HistogramVec
	lookaheadWeeks  prometheus.Histogram
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	claims := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slotkeeper_claims_total",
		Help: "Slot claims by outcome",
	}, []string{"outcome"})

	computeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slotkeeper_availability_duration_seconds",
		Help:    "Duration of availability computations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	lookaheadWeeks := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "slotkeeper_lookahead_weeks_examined",
		Help:    "Weeks examined per next-available-week search",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 52},
	})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registry.MustRegister(claims, computeDuration, lookaheadWeeks, requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		claims:          claims,
		computeDuration: computeDuration,
		lookaheadWeeks:  lookaheadWeeks,
		requestDuration: requestDuration,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveClaim(outcome string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveComputation(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.computeDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) ObserveLookahead(weeksExamined int) {
	if m == nil {
		return
	}
	m.lookaheadWeeks.Observe(float64(weeksExamined))
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}
