package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "employees_total",
			Help: "Employee records on file",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM employees")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "work_records_pending",
			Help: "Work records awaiting approval",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM work_records WHERE status = 'pending'")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "holidays_pending",
			Help: "Holiday requests awaiting a decision",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM holidays WHERE approval = 'Pending'")
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
