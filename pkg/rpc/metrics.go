package rpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes used as the "outcome" label.
const (
	OutcomeOK              = "ok"
	OutcomeNotified        = "notified"
	OutcomeUnsupported     = "unsupported"
	OutcomeInvalidParams   = "invalid_params"
	OutcomeConnectionError = "connection_error"
	OutcomeResponseError   = "response_error"
	OutcomeError           = "error"
)

// Metrics contains the Prometheus collectors of the adapter.
type Metrics struct {
	CallsTotal   *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers the collectors with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vergeclient",
				Subsystem: "rpc",
				Name:      "calls_total",
				Help:      "Total number of wallet RPC calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vergeclient",
				Subsystem: "rpc",
				Name:      "call_duration_seconds",
				Help:      "Duration of wallet RPC calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// observe is a no-op on a nil receiver.
func (m *Metrics) observe(method Method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	// Arbitrary names must not blow up label cardinality.
	label := method.String()
	if !method.IsAllowed() {
		label = OutcomeUnsupported
	}

	m.CallsTotal.WithLabelValues(label, outcome).Inc()
	m.CallDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}
