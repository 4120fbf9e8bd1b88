package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	metricPrefix = "ctacte_"

	resultSuccess = "success"
	resultError   = "error"
)

// Exported result labels for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

var (
	registerOnce sync.Once

	uploadRequests *prometheus.CounterVec
	uploadLatency  *prometheus.HistogramVec

	batchRunsTotal *prometheus.CounterVec
	batchLatency   *prometheus.HistogramVec

	pdfBuildTotal   *prometheus.CounterVec
	pdfBuildLatency *prometheus.HistogramVec

	artifactsTotal prometheus.Counter
	customersSkipped *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	queryLatency *prometheus.HistogramVec
)

// Init registers service metrics and DB-backed gauges.
func Init(db *sql.DB, logger *logrus.Logger) {
	registerOnce.Do(func() {
		uploadRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upload_requests_total",
				Help: "Total spreadsheet upload requests by result",
			},
			[]string{"result"},
		)
		uploadLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upload_latency_seconds",
				Help:    "Upload handling latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		batchRunsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "batch_runs_total",
				Help: "Total statement batch runs by mode and result",
			},
			[]string{"mode", "result"},
		)
		batchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "batch_latency_seconds",
				Help:    "Statement batch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode", "result"},
		)

		pdfBuildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pdf_build_total",
				Help: "Total PDF builds by layout and result",
			},
			[]string{"layout", "result"},
		)
		pdfBuildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pdf_build_latency_seconds",
				Help:    "PDF build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"layout", "result"},
		)

		artifactsTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "artifacts_written_total",
				Help: "Total statement artifacts written",
			},
		)
		customersSkipped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "customers_skipped_total",
				Help: "Total customers skipped during a batch by reason",
			},
			[]string{"reason"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total raw data exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Raw data export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		queryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "db_query_latency_seconds",
				Help:    "Database query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query"},
		)

		prometheus.MustRegister(
			uploadRequests,
			uploadLatency,
			batchRunsTotal,
			batchLatency,
			pdfBuildTotal,
			pdfBuildLatency,
			artifactsTotal,
			customersSkipped,
			exportTotal,
			exportLatency,
			queryLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveUpload records upload request duration and result.
func ObserveUpload(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if uploadRequests != nil {
		uploadRequests.WithLabelValues(result).Inc()
	}
	if uploadLatency != nil {
		uploadLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveBatch records a statement batch run.
func ObserveBatch(mode, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if batchRunsTotal != nil {
		batchRunsTotal.WithLabelValues(mode, result).Inc()
	}
	if batchLatency != nil {
		batchLatency.WithLabelValues(mode, result).Observe(duration.Seconds())
	}
}

// ObservePDFBuild records one per-customer PDF build.
func ObservePDFBuild(layout, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if pdfBuildTotal != nil {
		pdfBuildTotal.WithLabelValues(layout, result).Inc()
	}
	if pdfBuildLatency != nil {
		pdfBuildLatency.WithLabelValues(layout, result).Observe(duration.Seconds())
	}
}

// IncArtifact increments the written artifact counter.
func IncArtifact() {
	if artifactsTotal != nil {
		artifactsTotal.Inc()
	}
}

// IncCustomerSkipped increments the per-reason skip counter.
func IncCustomerSkipped(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if customersSkipped != nil {
		customersSkipped.WithLabelValues(reason).Inc()
	}
}

// ObserveExport records a raw query export.
func ObserveExport(format, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveQuery records a database query duration.
func ObserveQuery(query string, duration time.Duration) {
	if query == "" {
		query = "unknown"
	}
	if queryLatency != nil {
		queryLatency.WithLabelValues(query).Observe(duration.Seconds())
	}
}
