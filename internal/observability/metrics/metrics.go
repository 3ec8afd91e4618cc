package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "payroll_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	loginTotal *prometheus.CounterVec

	payrollSummaryTotal   *prometheus.CounterVec
	payrollSummaryLatency *prometheus.HistogramVec

	payrollExportTotal    *prometheus.CounterVec
	payrollExportLatency  *prometheus.HistogramVec
	payrollExportExcluded prometheus.Counter

	paymentRecordTotal *prometheus.CounterVec

	invoicePDFTotal   *prometheus.CounterVec
	invoicePDFLatency *prometheus.HistogramVec

	workRecordDecisions *prometheus.CounterVec
	holidayDecisions    *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status class",
			},
			[]string{"method", "class"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)

		loginTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_total",
				Help: "Total login attempts by result",
			},
			[]string{"result"},
		)

		payrollSummaryTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "summary_total",
				Help: "Total payroll summary calculations by result",
			},
			[]string{"result"},
		)
		payrollSummaryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "summary_latency_seconds",
				Help:    "Payroll summary latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		payrollExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total payroll export operations by format and result",
			},
			[]string{"format", "result"},
		)
		payrollExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Payroll export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		payrollExportExcluded = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_excluded_total",
				Help: "Employees excluded from SEPA exports for unusable bank details",
			},
		)

		paymentRecordTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_records_total",
				Help: "Total payment history writes by result",
			},
			[]string{"result"},
		)

		invoicePDFTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_pdf_total",
				Help: "Total invoice PDF renders by result",
			},
			[]string{"result"},
		)
		invoicePDFLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_pdf_latency_seconds",
				Help:    "Invoice PDF render latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		workRecordDecisions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "work_record_decisions_total",
				Help: "Total work record approval decisions by outcome",
			},
			[]string{"outcome"},
		)
		holidayDecisions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "holiday_decisions_total",
				Help: "Total holiday approval decisions by outcome",
			},
			[]string{"outcome"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			loginTotal,
			payrollSummaryTotal,
			payrollSummaryLatency,
			payrollExportTotal,
			payrollExportLatency,
			payrollExportExcluded,
			paymentRecordTotal,
			invoicePDFTotal,
			invoicePDFLatency,
			workRecordDecisions,
			holidayDecisions,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveHTTP records request duration and status class.
func ObserveHTTP(method, class string, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, class).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method).Observe(duration.Seconds())
	}
}

// IncLogin increments login attempts by result.
func IncLogin(result string) {
	if result == "" {
		result = resultSuccess
	}
	if loginTotal != nil {
		loginTotal.WithLabelValues(result).Inc()
	}
}

// ObservePayrollSummary records summary latency and result.
func ObservePayrollSummary(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if payrollSummaryTotal != nil {
		payrollSummaryTotal.WithLabelValues(result).Inc()
	}
	if payrollSummaryLatency != nil {
		payrollSummaryLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObservePayrollExport records export latency and result by format.
func ObservePayrollExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if payrollExportTotal != nil {
		payrollExportTotal.WithLabelValues(format, result).Inc()
	}
	if payrollExportLatency != nil {
		payrollExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// AddExportExcluded counts employees excluded from an export.
func AddExportExcluded(count int) {
	if count <= 0 {
		return
	}
	if payrollExportExcluded != nil {
		payrollExportExcluded.Add(float64(count))
	}
}

// IncPaymentRecord increments payment history writes.
func IncPaymentRecord(result string) {
	if result == "" {
		result = resultSuccess
	}
	if paymentRecordTotal != nil {
		paymentRecordTotal.WithLabelValues(result).Inc()
	}
}

// ObserveInvoicePDF records invoice PDF render latency and result.
func ObserveInvoicePDF(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if invoicePDFTotal != nil {
		invoicePDFTotal.WithLabelValues(result).Inc()
	}
	if invoicePDFLatency != nil {
		invoicePDFLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncWorkRecordDecision increments approval decision counters.
func IncWorkRecordDecision(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if workRecordDecisions != nil {
		workRecordDecisions.WithLabelValues(outcome).Inc()
	}
}

// IncHolidayDecision increments holiday decision counters.
func IncHolidayDecision(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if holidayDecisions != nil {
		holidayDecisions.WithLabelValues(outcome).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
