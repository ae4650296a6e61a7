package interfaces

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the narrow view of the metric registry the migrator writes to.
// Collectors are looked up by name; calls with an unregistered name are no-ops.
type Metrics interface {
	GetRegistry() *prometheus.Registry
	RegisterCounterVec(name, help string, labels []string)
	RegisterHistogramVec(name, help string, buckets []float64, labels []string)
	RegisterGauge(name, help string)
	IncCounterVec(name string, labels ...string)
	ObserveHistogramVec(name string, value float64, labels ...string)
	SetCurrentTimeGauge(name string)
	// WriteTextfile dumps the registry in the node exporter textfile format.
	WriteTextfile(path string) error
}
