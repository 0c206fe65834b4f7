package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the service exports. Each instance
// owns its registry so tests can build as many as they like.
type Metrics struct {
	Registry           *prometheus.Registry
	Transitions        *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
	HTTPDuration       *prometheus.HistogramVec
	OutboxPublished    prometheus.Counter
	OutboxFailures     prometheus.Counter
	RateLimited        *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coopreg_transitions_total",
			Help: "Workflow operations by action and outcome",
		}, []string{"action", "outcome"}),
		TransitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coopreg_transition_duration_seconds",
			Help:    "Latency of workflow operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coopreg_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopreg_outbox_published_total",
			Help: "Outbox events delivered downstream",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopreg_outbox_failures_total",
			Help: "Outbox relay runs that stopped on a publish failure",
		}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coopreg_rate_limited_total",
			Help: "Requests refused by the rate limiter",
		}, []string{"class"}),
	}
}

// ObserveTransition records one workflow operation. outcome is "success" or an error code.
func (m *Metrics) ObserveTransition(action, outcome string, elapsed time.Duration) {
	m.Transitions.WithLabelValues(action, outcome).Inc()
	m.TransitionDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) AddOutboxPublished(n int) {
	m.OutboxPublished.Add(float64(n))
}

func (m *Metrics) IncOutboxFailures() {
	m.OutboxFailures.Inc()
}

func (m *Metrics) IncRateLimited(class string) {
	m.RateLimited.WithLabelValues(class).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
