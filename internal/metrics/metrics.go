package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for catalog loading, lookups and the HTTP API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CatalogLoads     *prometheus.CounterVec
	CatalogFailures  *prometheus.CounterVec
	CatalogRows      *prometheus.GaugeVec
	DownloadDuration *prometheus.HistogramVec
	LookupDuration   *prometheus.HistogramVec
	LookupErrors     *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

// Load sources recorded on CatalogLoads.
const (
	SourceMemory  = "memory"
	SourceDisk    = "disk"
	SourceArchive = "archive"
)

// New creates a Metrics instance registered with reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CatalogLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kepmap_catalog_loads_total",
			Help: "Catalog loads by catalog and source (memory, disk, archive)",
		}, []string{"catalog", "source"}),
		CatalogFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kepmap_catalog_failures_total",
			Help: "Catalog loads that could not produce a table",
		}, []string{"catalog"}),
		CatalogRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kepmap_catalog_rows",
			Help: "Rows held by each loaded catalog",
		}, []string{"catalog"}),
		DownloadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kepmap_catalog_download_duration_seconds",
			Help:    "Duration of archive downloads including parsing",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"catalog"}),
		LookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kepmap_lookup_duration_seconds",
			Help:    "Duration of accessor lookups on loaded catalogs",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"accessor"}),
		LookupErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kepmap_lookup_errors_total",
			Help: "Accessor lookups that returned an error",
		}, []string{"accessor"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kepmap_http_requests_total",
			Help: "HTTP API requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// ObserveLoad records a successful catalog load and its row count.
func (m *Metrics) ObserveLoad(catalog, source string, rows int) {
	if m == nil {
		return
	}
	m.CatalogLoads.WithLabelValues(catalog, source).Inc()
	m.CatalogRows.WithLabelValues(catalog).Set(float64(rows))
}

// IncrementFailure records a failed catalog load.
func (m *Metrics) IncrementFailure(catalog string) {
	if m == nil {
		return
	}
	m.CatalogFailures.WithLabelValues(catalog).Inc()
}

// ObserveDownload records the duration of an archive download.
// Call with time.Now() at the start of the download.
func (m *Metrics) ObserveDownload(catalog string, start time.Time) {
	if m == nil {
		return
	}
	m.DownloadDuration.WithLabelValues(catalog).Observe(time.Since(start).Seconds())
}

// ObserveLookup records the duration and outcome of an accessor lookup.
func (m *Metrics) ObserveLookup(accessor string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.LookupDuration.WithLabelValues(accessor).Observe(time.Since(start).Seconds())
	if err != nil {
		m.LookupErrors.WithLabelValues(accessor).Inc()
	}
}

// IncrementRequest records one HTTP request.
func (m *Metrics) IncrementRequest(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
