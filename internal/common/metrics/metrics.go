// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	GenerationBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_generation_batches_total",
			Help: "Total number of query generation batches by final status",
		},
		[]string{"status"},
	)

	GenerationQueries = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_generation_queries_per_batch",
			Help:    "Number of queries returned per generation batch",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
		[]string{"source"},
	)

	GenerationStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "query_generation_stage_duration_seconds",
			Help: "Duration of each generation pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	EnhancementFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_enhancement_failures_total",
			Help: "Total number of AI enhancement failures by reason",
		},
		[]string{"reason"},
	)

	ContactsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contacts_scored_total",
			Help: "Total number of contacts scored by recommended action",
		},
		[]string{"action"},
	)
)
