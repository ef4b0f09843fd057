package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderCallsTotal tracks provider calls per operation and classified outcome
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namecord_provider_calls_total",
			Help: "Total number of name provider calls",
		},
		[]string{"operation", "outcome"},
	)

	// ProviderLatency tracks provider call latency
	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "namecord_provider_latency_seconds",
			Help:    "Name provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ResolutionsTotal tracks finished resolutions per mode and outcome
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namecord_resolutions_total",
			Help: "Total number of name resolutions",
		},
		[]string{"mode", "outcome"},
	)

	// ProbeAttempts tracks how many usages were probed per coherent resolution
	ProbeAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "namecord_probe_attempts",
			Help:    "Number of last name probes per resolution",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// PacingWait tracks time spent waiting on pacers before provider calls
	PacingWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "namecord_pacing_wait_seconds",
			Help:    "Time spent waiting before a provider call",
			Buckets: []float64{0.1, 0.25, 0.5, 0.75, 1, 2, 5, 10},
		},
		[]string{"pacer"},
	)

	// WorkerQueueDepth tracks pending resolutions in the worker pool
	WorkerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "namecord_worker_queue_depth",
			Help: "Number of resolutions waiting for a worker",
		},
	)
)
