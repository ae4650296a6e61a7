// Package metrics keeps the collectors of a migration run in their own
// Prometheus registry, so a batch job can flush them to a textfile when it ends.
package metrics

import (
	"errors"

	"github.com/haguru/recordmigrator/internal/interfaces"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a flexible Prometheus metrics collector. Metric names are
// prefixed with the namespace; registering a name twice keeps the first collector.
type Metrics struct {
	Registry      *prometheus.Registry
	namespace     string
	counterVecs   map[string]*prometheus.CounterVec
	histogramVecs map[string]*prometheus.HistogramVec
	gauges        map[string]prometheus.Gauge
}

// NewMetrics creates a Metrics instance with an empty registry.
func NewMetrics(namespace string) interfaces.Metrics {
	return &Metrics{
		Registry:      prometheus.NewRegistry(),
		namespace:     namespace,
		counterVecs:   make(map[string]*prometheus.CounterVec),
		histogramVecs: make(map[string]*prometheus.HistogramVec),
		gauges:        make(map[string]prometheus.Gauge),
	}
}

func (m *Metrics) GetRegistry() *prometheus.Registry {
	return m.Registry
}

func (m *Metrics) RegisterCounterVec(name, help string, labels []string) {
	if _, ok := m.counterVecs[name]; ok {
		return
	}
	opts := prometheus.CounterOpts{Namespace: m.namespace, Name: name, Help: help}
	m.counterVecs[name] = register(m.Registry, prometheus.NewCounterVec(opts, labels))
}

// RegisterHistogramVec registers a histogram with labels. nil buckets means
// prometheus.DefBuckets.
func (m *Metrics) RegisterHistogramVec(name, help string, buckets []float64, labels []string) {
	if _, ok := m.histogramVecs[name]; ok {
		return
	}
	opts := prometheus.HistogramOpts{Namespace: m.namespace, Name: name, Help: help, Buckets: buckets}
	m.histogramVecs[name] = register(m.Registry, prometheus.NewHistogramVec(opts, labels))
}

func (m *Metrics) RegisterGauge(name, help string) {
	if _, ok := m.gauges[name]; ok {
		return
	}
	opts := prometheus.GaugeOpts{Namespace: m.namespace, Name: name, Help: help}
	m.gauges[name] = register(m.Registry, prometheus.NewGauge(opts))
}

// IncCounterVec increments a counter in a CounterVec with labels. Unknown
// names are ignored.
func (m *Metrics) IncCounterVec(name string, labels ...string) {
	if counterVec, ok := m.counterVecs[name]; ok {
		counterVec.WithLabelValues(labels...).Inc()
	}
}

// ObserveHistogramVec observes a value in a histogram with labels.
func (m *Metrics) ObserveHistogramVec(name string, value float64, labels ...string) {
	if histogramVec, ok := m.histogramVecs[name]; ok {
		histogramVec.WithLabelValues(labels...).Observe(value)
	}
}

// SetCurrentTimeGauge sets the gauge to the current time in seconds since epoch.
func (m *Metrics) SetCurrentTimeGauge(name string) {
	if gauge, ok := m.gauges[name]; ok {
		gauge.SetToCurrentTime()
	}
}

// WriteTextfile writes every registered metric to path in the text format
// read by the node exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

// register adds c to reg. When an equal collector is already registered, that
// one is returned instead; any other registration error panics like MustRegister.
func register[C prometheus.Collector](reg *prometheus.Registry, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
