package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

const namespace = "annuity_review"

// Transaction outcomes
const (
	TxnValidated = "validated"
	TxnSubmitted = "submitted"
	TxnRejected  = "rejected"
)

// Metrics holds every collector the service exports
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Alert scoring
	AlertsGenerated  *prometheus.CounterVec
	AlertRunDuration *prometheus.HistogramVec

	// Chat provider
	ChatRequestsTotal *prometheus.CounterVec
	ChatDuration      *prometheus.HistogramVec

	// Replacement transactions
	TransactionsTotal *prometheus.CounterVec
}

// New creates the collectors on a private registry
func New() *Metrics {
	return &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		AlertsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "generated_total",
			Help:      "Alerts produced by the scoring engine",
		}, []string{"type", "severity"}),
		AlertRunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "run_duration_seconds",
			Help:      "Duration of an alert evaluation run",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		}, []string{"scope"}),

		ChatRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Chat provider calls by outcome",
		}, []string{"provider", "outcome"}),
		ChatDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "request_duration_seconds",
			Help:      "Chat provider call duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),

		TransactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transactions",
			Name:      "total",
			Help:      "Replacement transactions by outcome",
		}, []string{"outcome"}),
	}
}

// Register registers every collector plus the Go and process collectors
func (m *Metrics) Register() error {
	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AlertsGenerated,
		m.AlertRunDuration,
		m.ChatRequestsTotal,
		m.ChatDuration,
		m.TransactionsTotal,
	}
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordAlerts counts alerts by type and severity
func (m *Metrics) RecordAlerts(alerts []models.Alert) {
	for _, a := range alerts {
		m.AlertsGenerated.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
	}
}

// ObserveAlertRun records how long an evaluation run over scope took
func (m *Metrics) ObserveAlertRun(scope string, d time.Duration) {
	m.AlertRunDuration.WithLabelValues(scope).Observe(d.Seconds())
}

// ObserveChat records one provider call
func (m *Metrics) ObserveChat(provider, outcome string, d time.Duration) {
	m.ChatRequestsTotal.WithLabelValues(provider, outcome).Inc()
	m.ChatDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordTransaction counts a validation or submission outcome
func (m *Metrics) RecordTransaction(outcome string) {
	m.TransactionsTotal.WithLabelValues(outcome).Inc()
}
