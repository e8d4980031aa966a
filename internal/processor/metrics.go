package processor

import (
	"strings"
	"time"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/fetcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	processedLogs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpindexer_processed_logs_total",
			Help: "Total number of processed logs by event kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	processDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gpindexer_process_duration_seconds",
			Help:    "Duration of processing one log, chain reads included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

// ProcessedLogInc records a log outcome. Failed logs are labeled with their error code.
func ProcessedLogInc(kind fetcher.Kind, outcome string) {
	processedLogs.WithLabelValues(kind.String(), strings.ToLower(outcome)).Inc()
}

func ProcessDurationLog(kind fetcher.Kind, d time.Duration) {
	processDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
}
