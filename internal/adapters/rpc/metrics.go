package rpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type serverMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	m := &serverMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colord",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "RPC requests by operation and result code.",
		}, []string{"operation", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "colord",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "RPC request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *serverMetrics) observeResult(operation, code string) {
	m.requests.WithLabelValues(operation, code).Inc()
}

func (m *serverMetrics) observeDuration(operation string, elapsed time.Duration) {
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
