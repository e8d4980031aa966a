package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Indexing metrics
	LastIndexedBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpindexer_last_indexed_block",
			Help: "The last block number successfully indexed",
		},
	)

	BlocksProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gpindexer_blocks_processed_total",
			Help: "Total number of blocks processed",
		},
	)

	LogsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpindexer_logs_indexed_total",
			Help: "Total number of logs handed to the processors by event kind",
		},
		[]string{"kind"},
	)

	RangeProcessingTime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gpindexer_range_processing_duration_seconds",
			Help:    "Time taken to fetch and process one block range",
			Buckets: prometheus.DefBuckets,
		},
	)

	IndexingRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpindexer_indexing_rate_blocks_per_second",
			Help: "Current indexing rate in blocks per second",
		},
	)

	// Cursor metrics
	CursorBlocks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpindexer_cursor_block",
			Help: "Cursor block numbers (latest, from, to)",
		},
		[]string{"position"},
	)

	DistanceToHead = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpindexer_distance_to_head_blocks",
			Help: "Distance between the last fetched block and the chain head",
		},
	)

	CooldownWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gpindexer_cooldown_waits_total",
			Help: "Total number of times the indexer waited for new blocks near the head",
		},
	)

	LeaseHeld = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpindexer_lease_held",
			Help: "Whether this instance holds the single-writer lease (1=held, 0=not held)",
		},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpindexer_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpindexer_errors_total",
			Help: "Total number of errors by component and severity",
		},
		[]string{"component", "severity"},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpindexer_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpindexer_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpindexer_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

func RangeProcessingTimeLog(duration time.Duration) {
	RangeProcessingTime.Observe(duration.Seconds())
}

func LastIndexedBlockSet(blockNum uint64) {
	LastIndexedBlock.Set(float64(blockNum))
}

func BlocksProcessedInc(count uint64) {
	BlocksProcessed.Add(float64(count))
}

func LogsIndexedInc(kind string, count int) {
	LogsIndexed.WithLabelValues(kind).Add(float64(count))
}

func IndexingRateLog(rate float64) {
	IndexingRate.Set(rate)
}

func CursorSet(latest, from, to uint64) {
	CursorBlocks.WithLabelValues("latest").Set(float64(latest))
	CursorBlocks.WithLabelValues("from").Set(float64(from))
	CursorBlocks.WithLabelValues("to").Set(float64(to))
	if latest >= to {
		DistanceToHead.Set(float64(latest - to))
	}
}

func CooldownWaitInc() {
	CooldownWaits.Inc()
}

func ErrorsInc(component, severity string) {
	Errors.WithLabelValues(component, severity).Inc()
}

func LeaseHeldSet(held bool) {
	LeaseHeld.Set(boolToFloat(held))
}

func ComponentHealthSet(component string, healthy bool) {
	ComponentHealth.WithLabelValues(component).Set(boolToFloat(healthy))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// UpdateSystemMetrics updates runtime system metrics.
// This should be called periodically (e.g., every 15 seconds).
func UpdateSystemMetrics() {
	// Update uptime
	Uptime.Set(time.Since(startTime).Seconds())

	// Update goroutine count
	Goroutines.Set(float64(runtime.NumGoroutine()))

	// Update memory statistics
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("total_alloc").Set(float64(m.TotalAlloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}
