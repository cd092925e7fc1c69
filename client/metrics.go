package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the Prometheus metrics for API traffic.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec
	PacerWaits      prometheus.Counter
	PacerWaitTime   prometheus.Counter
}

// NewCollector creates a collector registered on the default registry.
func NewCollector() *Collector {
	return NewCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector registered on the given
// registry. Tests use this to avoid duplicate registration.
func NewCollectorWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gridbase",
				Name:      "requests_total",
				Help:      "Total number of API requests issued",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gridbase",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gridbase",
				Name:      "request_errors_total",
				Help:      "Total number of failed API requests",
			},
			[]string{"method", "status"},
		),
		PacerWaits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gridbase",
				Name:      "pacer_waits_total",
				Help:      "Number of batch sub-requests delayed by the rate pacer",
			},
		),
		PacerWaitTime: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gridbase",
				Name:      "pacer_wait_seconds_total",
				Help:      "Cumulative time spent waiting on the rate pacer",
			},
		),
	}
}
