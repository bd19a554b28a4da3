// Package metrics exposes Prometheus counters for conversion runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wp2md"

// Metrics holds all conversion metrics. Each instance owns its registry, so
// several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// Extraction metrics
	RecordsExtracted *prometheus.CounterVec
	RecordsSkipped   prometheus.Counter
	AssetsFound      prometheus.Counter

	// Enrichment metrics
	EnrichmentResults *prometheus.CounterVec

	// Output metrics
	RecordsWritten *prometheus.CounterVec
	ImageDownloads *prometheus.CounterVec

	// Run metrics
	Runs          *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	LastRunRecord prometheus.Gauge
}

// RunStats is what a finished run reports.
type RunStats struct {
	RecordsByType    map[string]int
	RecordsSkipped   int
	AssetsFound      int
	Enriched         int
	EnrichmentFailed int
	Written          int
	WriteSkipped     int
	WriteFailed      int
	ImagesDownloaded int
	ImagesSkipped    int
	ImagesFailed     int
	Duration         time.Duration
	Err              error
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RecordsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "Records extracted from exports, by record type",
		}, []string{"type"}),
		RecordsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Malformed records left out of the output",
		}),
		AssetsFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_found_total",
			Help:      "Image assets discovered in exports",
		}),
		EnrichmentResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_results_total",
			Help:      "Event enrichment outcomes",
		}, []string{"result"}),
		RecordsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_files_total",
			Help:      "Record files handled by the writer",
		}, []string{"result"}),
		ImageDownloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_downloads_total",
			Help:      "Image download outcomes",
		}, []string{"result"}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Conversion runs, by status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a conversion run",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		}),
		LastRunRecord: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_records",
			Help:      "Records produced by the most recent run",
		}),
	}
}

// ObserveRun records the outcome of one conversion run.
func (m *Metrics) ObserveRun(stats RunStats) {
	status := "completed"
	if stats.Err != nil {
		status = "failed"
	}
	m.Runs.WithLabelValues(status).Inc()
	m.RunDuration.Observe(stats.Duration.Seconds())

	total := 0
	for recordType, count := range stats.RecordsByType {
		m.RecordsExtracted.WithLabelValues(recordType).Add(float64(count))
		total += count
	}
	m.LastRunRecord.Set(float64(total))
	m.RecordsSkipped.Add(float64(stats.RecordsSkipped))
	m.AssetsFound.Add(float64(stats.AssetsFound))

	m.EnrichmentResults.WithLabelValues("enriched").Add(float64(stats.Enriched))
	m.EnrichmentResults.WithLabelValues("failed").Add(float64(stats.EnrichmentFailed))

	m.RecordsWritten.WithLabelValues("written").Add(float64(stats.Written))
	m.RecordsWritten.WithLabelValues("skipped").Add(float64(stats.WriteSkipped))
	m.RecordsWritten.WithLabelValues("failed").Add(float64(stats.WriteFailed))

	m.ImageDownloads.WithLabelValues("downloaded").Add(float64(stats.ImagesDownloaded))
	m.ImageDownloads.WithLabelValues("skipped").Add(float64(stats.ImagesSkipped))
	m.ImageDownloads.WithLabelValues("failed").Add(float64(stats.ImagesFailed))
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
