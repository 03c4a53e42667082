package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache operation results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultOK    = "ok"
	ResultError = "error"
)

// CacheRecorder counts cache-aside operations by operation and outcome.
type CacheRecorder interface {
	Observe(op, result string)
}

// PrometheusCache records cache operations as a Prometheus counter vector.
type PrometheusCache struct {
	ops *prometheus.CounterVec
}

// NewPrometheusCache registers the cache collectors on reg.
func NewPrometheusCache(reg prometheus.Registerer) *PrometheusCache {
	factory := promauto.With(reg)
	return &PrometheusCache{
		ops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache-aside operations partitioned by operation and result.",
		}, []string{"op", "result"}),
	}
}

// Observe implements CacheRecorder.
func (p *PrometheusCache) Observe(op, result string) {
	p.ops.WithLabelValues(op, result).Inc()
}

// NopCache discards observations.
type NopCache struct{}

// Observe implements CacheRecorder.
func (NopCache) Observe(string, string) {}
