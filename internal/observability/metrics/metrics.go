package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "home_energy_"

	resultSuccess = "success"
	resultError   = "error"

	validationAccepted = "accepted"
	validationRejected = "rejected"
	validationWarned   = "warned"
)

var (
	registerOnce sync.Once

	readingWrites  *prometheus.CounterVec
	readingLatency *prometheus.HistogramVec

	validationResults *prometheus.CounterVec

	summaryTotal   *prometheus.CounterVec
	summaryLatency *prometheus.HistogramVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		readingWrites = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reading_writes_total",
				Help: "Total reading write operations by action and result",
			},
			[]string{"action", "result"},
		)
		readingLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reading_write_latency_seconds",
				Help:    "Reading write latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action", "result"},
		)

		validationResults = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reading_validations_total",
				Help: "Total reading validations by outcome",
			},
			[]string{"outcome"},
		)

		summaryTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "summary_calculations_total",
				Help: "Total period summary calculations by period and result",
			},
			[]string{"period", "result"},
		)
		summaryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "summary_calculation_latency_seconds",
				Help:    "Period summary calculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"period", "result"},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			readingWrites,
			readingLatency,
			validationResults,
			summaryTotal,
			summaryLatency,
			reportExportTotal,
			reportExportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "stored_readings",
			Help: "Stored meter readings",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM meter_readings")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "registered_devices",
			Help: "Registered devices",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM devices")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}

// ObserveReadingWrite records write duration and result for one action.
func ObserveReadingWrite(action, result string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if readingWrites != nil {
		readingWrites.WithLabelValues(action, result).Inc()
	}
	if readingLatency != nil {
		readingLatency.WithLabelValues(action, result).Observe(duration.Seconds())
	}
}

// IncValidation increments the validation outcome counter.
func IncValidation(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if validationResults != nil {
		validationResults.WithLabelValues(outcome).Inc()
	}
}

// ObserveSummary records summary calculation latency and result.
func ObserveSummary(period, result string, duration time.Duration) {
	if period == "" {
		period = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if summaryTotal != nil {
		summaryTotal.WithLabelValues(period, result).Inc()
	}
	if summaryLatency != nil {
		summaryLatency.WithLabelValues(period, result).Observe(duration.Seconds())
	}
}

// ObserveReportExport records export latency and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	ValidationAccepted = validationAccepted
	ValidationRejected = validationRejected
	ValidationWarned   = validationWarned
)
