package monitor

import (
	"net/http"
	"strconv"

	"github.com/muurk/ookbridge/internal/decoder"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ookbridge"

// Metrics holds the bridge's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	Cycles        prometheus.Counter
	Rejections    *prometheus.CounterVec
	Frames        *prometheus.CounterVec
	Readings      *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	LastReading   *prometheus.GaugeVec
	Published     *prometheus.CounterVec
}

// New creates and registers the collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Decode cycles run.",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Cycles that produced no reading, by protocol and kind.",
		}, []string{"protocol", "kind"}),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames accepted, by protocol.",
		}, []string{"protocol"}),
		Readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Readings extracted, by protocol and metric.",
		}, []string{"protocol", "metric"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one decode cycle.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		LastReading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_reading",
			Help:      "Most recent value per sensor and metric.",
		}, []string{"protocol", "device", "metric"}),
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_total",
			Help:      "Messages handed to publishers, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.Cycles,
		m.Rejections,
		m.Frames,
		m.Readings,
		m.CycleDuration,
		m.LastReading,
		m.Published,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe implements decoder.Observer.
func (m *Metrics) Observe(o decoder.Outcome) {
	m.Cycles.Inc()
	m.CycleDuration.Observe(o.Elapsed.Seconds())

	if o.Rejection != nil {
		m.Rejections.WithLabelValues(o.Protocol.String(), o.RejectionKind()).Inc()
		return
	}
	if !o.Accepted() {
		return
	}

	proto := o.Protocol.String()
	m.Frames.WithLabelValues(proto).Inc()
	for _, r := range o.Readings {
		metric := r.Metric.String()
		m.Readings.WithLabelValues(proto, metric).Inc()
		m.LastReading.WithLabelValues(proto, strconv.Itoa(r.DeviceID), metric).Set(r.Value)
	}
}

// RecordPublish counts delivered and failed messages.
func (m *Metrics) RecordPublish(sent, total int) {
	m.Published.WithLabelValues("ok").Add(float64(sent))
	m.Published.WithLabelValues("error").Add(float64(total - sent))
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
