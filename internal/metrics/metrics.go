package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetryAttempts tracks every attempt made by a retry loop
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finecheck_retry_attempts_total",
			Help: "Total number of attempts made by retry loops",
		},
		[]string{"stage", "result"},
	)

	// UpstreamRequests tracks requests sent to the lookup service
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finecheck_upstream_requests_total",
			Help: "Total number of requests sent to the lookup service",
		},
		[]string{"method", "status"},
	)

	// UpstreamLatency tracks lookup service latency
	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finecheck_upstream_latency_seconds",
			Help:    "Lookup service request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// OCRDuration tracks captcha recognition time
	OCRDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "finecheck_ocr_duration_seconds",
			Help:    "Captcha recognition time in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ChecksTotal tracks finished checks by outcome (violations, clean, error, cached, invalid, aborted)
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finecheck_checks_total",
			Help: "Total number of plate checks",
		},
		[]string{"outcome"},
	)

	// CheckDuration tracks end-to-end check latency
	CheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "finecheck_check_duration_seconds",
			Help:    "End-to-end plate check latency in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
	)

	// ChecksInflight tracks checks currently holding a pool slot
	ChecksInflight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "finecheck_checks_inflight",
			Help: "Number of plate checks currently running",
		},
	)

	// CacheLookups tracks result cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finecheck_cache_lookups_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"result"},
	)

	// DBConnectionPoolUsage is in-use connections over the pool cap
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "finecheck_db_connection_pool_usage_percent",
			Help: "History database connections in use as a percentage of the pool cap",
		},
	)

	// DBConnections tracks history database connections by state (in_use, idle)
	DBConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "finecheck_db_connections",
			Help: "History database connections by state",
		},
		[]string{"state"},
	)
)
