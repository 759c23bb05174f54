// Package metrics exposes coordinator measurements to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zwave-go-home/internal/coordinator"
)

const namespace = "zwave"

// Metrics holds the bridge collectors. It implements coordinator.Observer.
type Metrics struct {
	registry *prometheus.Registry

	queueDepth       prometheus.Gauge
	recordsTotal     *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	eventsTotal      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry with the Go runtime and
// process collectors attached.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Records waiting for dispatch",
		}),
		recordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "records_total",
			Help:      "Records dispatched, by notification kind",
		}, []string{"kind"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Time spent translating one record into events",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"kind"}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "emitted_total",
			Help:      "Events emitted on the bus, by type",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		m.queueDepth,
		m.recordsTotal,
		m.dispatchDuration,
		m.eventsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// QueueDepth implements coordinator.Observer.
func (m *Metrics) QueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// RecordDispatched implements coordinator.Observer.
func (m *Metrics) RecordDispatched(kind string, d time.Duration) {
	m.recordsTotal.WithLabelValues(kind).Inc()
	m.dispatchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// Attach counts every event on the bus. Returns an unsubscribe function.
func (m *Metrics) Attach(events *coordinator.EventBus) func() {
	return events.OnAll(func(e coordinator.Event) {
		m.eventsTotal.WithLabelValues(e.Type).Inc()
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
