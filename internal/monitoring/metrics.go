// internal/monitoring/metrics.go
package monitoring

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsManager manages Prometheus metrics for an export run. Metrics live
// on a private registry so repeated runs in one process never collide.
type MetricsManager struct {
	registry *prometheus.Registry

	// Scanning metrics
	pagesScanned     *prometheus.CounterVec
	recordsExtracted *prometheus.CounterVec
	recordsTruncated *prometheus.CounterVec
	scanDuration     *prometheus.HistogramVec
	fallbacks        *prometheus.CounterVec

	// Output metrics
	exports      *prometheus.CounterVec
	rowsExported *prometheus.CounterVec
	lastExport   prometheus.Gauge

	namespace string
	subsystem string
}

// MetricsConfig configuration for metrics
type MetricsConfig struct {
	Namespace       string            `json:"namespace"`
	Subsystem       string            `json:"subsystem"`
	Labels          map[string]string `json:"labels"`
	EnableGoMetrics bool              `json:"enable_go_metrics"`
}

// NewMetricsManager creates a new metrics manager
func NewMetricsManager(config MetricsConfig) *MetricsManager {
	if config.Namespace == "" {
		config.Namespace = "listscrapexter"
	}
	if config.Subsystem == "" {
		config.Subsystem = "scraper"
	}

	mm := &MetricsManager{
		registry:  prometheus.NewRegistry(),
		namespace: config.Namespace,
		subsystem: config.Subsystem,
	}

	if config.EnableGoMetrics {
		mm.registry.MustRegister(collectors.NewGoCollector())
	}

	mm.initializeMetrics(prometheus.Labels(config.Labels))

	return mm
}

// initializeMetrics initializes all Prometheus metrics
func (mm *MetricsManager) initializeMetrics(constLabels prometheus.Labels) {
	factory := promauto.With(mm.registry)

	mm.pagesScanned = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   mm.namespace,
			Subsystem:   mm.subsystem,
			Name:        "pages_scanned_total",
			Help:        "Total number of list pages scanned",
			ConstLabels: constLabels,
		},
		[]string{"registry"},
	)

	mm.recordsExtracted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   mm.namespace,
			Subsystem:   mm.subsystem,
			Name:        "records_extracted_total",
			Help:        "Total number of complete records extracted",
			ConstLabels: constLabels,
		},
		[]string{"registry"},
	)

	mm.recordsTruncated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   mm.namespace,
			Subsystem:   mm.subsystem,
			Name:        "records_truncated_total",
			Help:        "Total number of rows dropped because a required field was missing",
			ConstLabels: constLabels,
		},
		[]string{"registry"},
	)

	mm.scanDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   mm.namespace,
			Subsystem:   mm.subsystem,
			Name:        "page_scan_duration_seconds",
			Help:        "Time spent reading and scanning one page",
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			ConstLabels: constLabels,
		},
		[]string{"registry"},
	)

	mm.fallbacks = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   mm.namespace,
			Subsystem:   mm.subsystem,
			Name:        "registry_fallbacks_total",
			Help:        "Number of times the fallback registry replaced the primary",
			ConstLabels: constLabels,
		},
		[]string{"from", "to"},
	)

	mm.exports = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   mm.namespace,
			Subsystem:   "output",
			Name:        "exports_total",
			Help:        "Total number of exports handed to the downloader",
			ConstLabels: constLabels,
		},
		[]string{"format"},
	)

	mm.rowsExported = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   mm.namespace,
			Subsystem:   "output",
			Name:        "rows_exported_total",
			Help:        "Total number of rows exported",
			ConstLabels: constLabels,
		},
		[]string{"format"},
	)

	mm.lastExport = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   mm.namespace,
			Subsystem:   "output",
			Name:        "last_export_timestamp_seconds",
			Help:        "Unix time of the last successful export",
			ConstLabels: constLabels,
		},
	)
}

// PageScanned records one scanned page.
func (mm *MetricsManager) PageScanned(registry string, records, truncated int, elapsed time.Duration) {
	mm.pagesScanned.WithLabelValues(registry).Inc()
	mm.recordsExtracted.WithLabelValues(registry).Add(float64(records))
	if truncated > 0 {
		mm.recordsTruncated.WithLabelValues(registry).Add(float64(truncated))
	}
	mm.scanDuration.WithLabelValues(registry).Observe(elapsed.Seconds())
}

// FallbackUsed records a switch from one registry to another.
func (mm *MetricsManager) FallbackUsed(from, to string) {
	mm.fallbacks.WithLabelValues(from, to).Inc()
}

// Exported records a completed export.
func (mm *MetricsManager) Exported(format string, rows int) {
	mm.exports.WithLabelValues(format).Inc()
	mm.rowsExported.WithLabelValues(format).Add(float64(rows))
	mm.lastExport.SetToCurrentTime()
}

// Registry returns the registry holding every metric of the manager.
func (mm *MetricsManager) Registry() *prometheus.Registry {
	return mm.registry
}

// WriteToTextfile writes the metrics in the text exposition format, for the
// node exporter textfile collector. The file is replaced atomically.
func (mm *MetricsManager) WriteToTextfile(filename string) error {
	if err := prometheus.WriteToTextfile(filename, mm.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", filename, err)
	}
	return nil
}
