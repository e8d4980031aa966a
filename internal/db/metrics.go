package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	txOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpindexer_db_transactions_total",
			Help: "Total number of database transactions by outcome",
		},
		[]string{"outcome"},
	)

	txDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gpindexer_db_transaction_duration_seconds",
			Help:    "Duration of database transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	walCheckpoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpindexer_db_wal_checkpoint_total",
			Help: "Total number of WAL checkpoint operations",
		},
		[]string{"mode"},
	)

	vacuumRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gpindexer_db_vacuum_total",
			Help: "Total number of VACUUM operations",
		},
	)

	dbSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpindexer_db_size_bytes",
			Help: "Database file size in bytes, including WAL and SHM files",
		},
	)
)

func TxCommittedInc() {
	txOutcomes.WithLabelValues("commit").Inc()
}

func TxRolledBackInc() {
	txOutcomes.WithLabelValues("rollback").Inc()
}

func TxDurationLog(duration time.Duration) {
	txDuration.Observe(duration.Seconds())
}

func WALCheckpointInc(mode string) {
	walCheckpoints.WithLabelValues(mode).Inc()
}

func VacuumRunsInc() {
	vacuumRuns.Inc()
}

func DBSizeLog(sizeBytes int64) {
	dbSize.Set(float64(sizeBytes))
}
