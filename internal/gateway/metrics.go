package gateway

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records API traffic. A nil *Metrics is a no-op.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
}

// NewMetrics registers the gateway collectors against registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_api_requests_total",
		Help: "Requests sent to the backend API by resource and status.",
	}, []string{"resource", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "panel_api_request_duration_seconds",
		Help:    "Latency of backend API requests by resource.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_api_token_refresh_total",
		Help: "Access token refresh attempts by result.",
	}, []string{"result"})
	registerer.MustRegister(requests, duration, refreshes)
	return &Metrics{requests: requests, duration: duration, refreshes: refreshes}
}

func (m *Metrics) observe(path, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	resource := resourceLabel(path)
	m.requests.WithLabelValues(resource, code).Inc()
	m.duration.WithLabelValues(resource).Observe(elapsed.Seconds())
}

func (m *Metrics) refreshed(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// resourceLabel keeps label cardinality bounded by dropping ids.
func resourceLabel(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "root"
	}
	first, _, _ := strings.Cut(trimmed, "/")
	return first
}
