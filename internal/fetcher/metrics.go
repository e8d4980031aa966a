package fetcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchedLogs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpindexer_fetched_logs_total",
			Help: "Total number of decoded logs by event kind",
		},
		[]string{"kind"},
	)

	fetchRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpindexer_fetch_retries_total",
			Help: "Total number of log fetch retries by event kind",
		},
		[]string{"kind"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gpindexer_fetch_duration_seconds",
			Help:    "Duration of a log fetch for one range, including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

func FetchedLogsAdd(kind Kind, count int) {
	fetchedLogs.WithLabelValues(kind.String()).Add(float64(count))
}

func FetchRetryInc(kind Kind) {
	fetchRetries.WithLabelValues(kind.String()).Inc()
}

func FetchDurationLog(kind Kind, d time.Duration) {
	fetchDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
}
