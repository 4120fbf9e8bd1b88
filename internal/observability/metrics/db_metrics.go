package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func registerDBMetrics(db *sql.DB, logger *logrus.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "audit_entries_today",
			Help: "Audit log entries recorded today",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM audit_logs WHERE created_at::date = CURRENT_DATE")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "movements_loaded_today",
			Help: "Movement rows issued today in the history table",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM movimientos_cta_cte WHERE fecha::date = CURRENT_DATE AND habilitado")
		},
	))
}

func queryCount(db *sql.DB, logger *logrus.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.WithError(err).Warn("metrics query failed")
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
