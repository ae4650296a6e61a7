package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CounterVec(t *testing.T) {
	m := NewMetrics("recordmigrator").(*Metrics)
	m.RegisterCounterVec("rows_total", "Rows by outcome", []string{"entity", "outcome"})

	m.IncCounterVec("rows_total", "users", "migrated")
	m.IncCounterVec("rows_total", "users", "migrated")
	m.IncCounterVec("rows_total", "users", "skipped_duplicate")
	m.IncCounterVec("unknown_metric", "users", "migrated")

	cv := m.counterVecs["rows_total"]
	assert.Equal(t, 2.0, testutil.ToFloat64(cv.WithLabelValues("users", "migrated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cv.WithLabelValues("users", "skipped_duplicate")))
}

func TestMetrics_HistogramAndGauge(t *testing.T) {
	m := NewMetrics("recordmigrator").(*Metrics)
	m.RegisterHistogramVec("routine_duration_seconds", "Routine duration", []float64{1, 10}, []string{"entity"})
	m.RegisterGauge("last_run_timestamp_seconds", "Last run")

	m.ObserveHistogramVec("routine_duration_seconds", 0.5, "sales")
	m.SetCurrentTimeGauge("last_run_timestamp_seconds")

	assert.Equal(t, 1, testutil.CollectAndCount(m.histogramVecs["routine_duration_seconds"]))
	assert.Greater(t, testutil.ToFloat64(m.gauges["last_run_timestamp_seconds"]), 0.0)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics("recordmigrator")
	m.RegisterCounterVec("rows_total", "Rows by outcome", []string{"entity", "outcome"})
	m.IncCounterVec("rows_total", "products", "insert_failed")

	path := filepath.Join(t.TempDir(), "migration.prom")
	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `recordmigrator_rows_total{entity="products",outcome="insert_failed"} 1`)
}

func TestMetrics_RegisterTwiceKeepsFirst(t *testing.T) {
	m := NewMetrics("recordmigrator").(*Metrics)
	m.RegisterCounterVec("rows_total", "Rows by outcome", []string{"entity", "outcome"})
	m.IncCounterVec("rows_total", "users", "migrated")

	assert.NotPanics(t, func() {
		m.RegisterCounterVec("rows_total", "Rows by outcome", []string{"entity", "outcome"})
		m.RegisterGauge("last_run_timestamp_seconds", "Last run")
		m.RegisterGauge("last_run_timestamp_seconds", "Last run")
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.counterVecs["rows_total"].WithLabelValues("users", "migrated")))
}

func TestRegister_SharedRegistry(t *testing.T) {
	first := NewMetrics("recordmigrator").(*Metrics)
	second := &Metrics{
		Registry:      first.Registry,
		namespace:     "recordmigrator",
		counterVecs:   map[string]*prometheus.CounterVec{},
		histogramVecs: map[string]*prometheus.HistogramVec{},
		gauges:        map[string]prometheus.Gauge{},
	}

	first.RegisterCounterVec("rows_total", "Rows by outcome", []string{"entity", "outcome"})
	second.RegisterCounterVec("rows_total", "Rows by outcome", []string{"entity", "outcome"})
	second.IncCounterVec("rows_total", "sales", "migrated")

	assert.Same(t, first.counterVecs["rows_total"], second.counterVecs["rows_total"])
	assert.Equal(t, 1.0, testutil.ToFloat64(first.counterVecs["rows_total"].WithLabelValues("sales", "migrated")))
}
