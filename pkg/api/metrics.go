package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "gpindexer_api_request_duration_seconds",
		Help:    "Duration of read API requests by method and status",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "status"},
)

func requestDurationLog(method string, status int, d time.Duration) {
	requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
