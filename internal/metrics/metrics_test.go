package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveLoad("cumulative", SourceArchive, 120)
	m.ObserveLoad("cumulative", SourceMemory, 120)
	m.ObserveLoad("cumulative", SourceMemory, 120)
	m.IncrementFailure("q1_q17_dr24_stellar")
	m.ObserveDownload("cumulative", time.Now())
	m.ObserveLookup("stellar", time.Now(), nil)
	m.ObserveLookup("stellar", time.Now(), errors.New("unknown"))
	m.IncrementRequest("/api/v1/koi/{id}", 404)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogLoads.WithLabelValues("cumulative", SourceArchive)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CatalogLoads.WithLabelValues("cumulative", SourceMemory)))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.CatalogRows.WithLabelValues("cumulative")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogFailures.WithLabelValues("q1_q17_dr24_stellar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupErrors.WithLabelValues("stellar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/v1/koi/{id}", "404")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLoad("cumulative", SourceDisk, 1)
		m.IncrementFailure("cumulative")
		m.ObserveDownload("cumulative", time.Now())
		m.ObserveLookup("candidates", time.Now(), nil)
		m.IncrementRequest("/", 200)
	})
}
