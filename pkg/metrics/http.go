package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRecorder tracks request latency per route.
type HTTPRecorder struct {
	latency *prometheus.HistogramVec
}

// NewHTTPRecorder registers the HTTP collectors on reg.
func NewHTTPRecorder(reg prometheus.Registerer) *HTTPRecorder {
	factory := promauto.With(reg)
	return &HTTPRecorder{
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Observe records one finished request.
func (h *HTTPRecorder) Observe(method, route string, status int, elapsed time.Duration) {
	if h == nil {
		return
	}
	h.latency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
