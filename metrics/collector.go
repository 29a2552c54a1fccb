// Package metrics exports herald dispatcher activity to Prometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zoobzio/herald"
)

// Collector records dispatcher traces as Prometheus metrics.
type Collector struct {
	invocations   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	queueWaitTime prometheus.Histogram

	observer *herald.Observer
}

// Instrument registers dispatcher metrics on reg and starts observing d.
// Gauges read d.Stats() at scrape time.
func Instrument(d *herald.Dispatcher, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	c := &Collector{
		invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "herald_invocations_total",
				Help: "Total number of executed invocations",
			},
			[]string{"signal", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "herald_invocation_duration_seconds",
				Help:    "Handler execution duration in seconds",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"signal"},
		),
		queueWaitTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "herald_queue_wait_seconds",
				Help:    "Time invocations spent queued before execution",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "herald_queue_depth",
			Help: "Current number of queued invocations",
		},
		func() float64 { return float64(d.Stats().QueueDepth) },
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "herald_handlers",
			Help: "Current number of registered handlers",
		},
		func() float64 { return float64(d.Stats().Handlers) },
	)
	factory.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "herald_abandoned_total",
			Help: "Total number of queued invocations discarded without running",
		},
		func() float64 { return float64(d.Stats().Abandoned) },
	)

	c.observer = d.Observe(c.Record)

	return c
}

// Record updates the metrics for one executed invocation.
func (c *Collector) Record(trace herald.Trace) {
	status := "ok"
	if errors.Is(trace.Err, herald.ErrHandlerFailed) {
		status = "failed"
	}
	signal := string(trace.Signal)

	c.invocations.WithLabelValues(signal, status).Inc()
	c.duration.WithLabelValues(signal).Observe(trace.Duration.Seconds())
	c.queueWaitTime.Observe(trace.Wait().Seconds())
}

// Close stops observing the dispatcher. Registered metrics keep their values.
func (c *Collector) Close() {
	c.observer.Close()
}
