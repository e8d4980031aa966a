package broadcast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var publishedEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gpindexer_published_events_total",
		Help: "Total number of real-time events by subject and outcome",
	},
	[]string{"subject", "outcome"},
)

func PublishedInc(subject string) {
	publishedEvents.WithLabelValues(subject, "ok").Inc()
}

func PublishFailedInc(subject string) {
	publishedEvents.WithLabelValues(subject, "failed").Inc()
}
