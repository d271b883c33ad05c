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
)

// Assessment engine collectors.
var (
	QuestionsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_questions_generated_total",
			Help: "Total number of assessment questions generated",
		},
		[]string{"category", "difficulty"},
	)

	PoolExhaustions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_pool_exhaustions_total",
			Help: "Questions produced by the repeat fallback because a pool ran out of unique templates",
		},
		[]string{"category", "difficulty"},
	)

	BlueprintCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_blueprint_cache_total",
			Help: "Blueprint cache lookups by result (hit, miss, error, bypass)",
		},
		[]string{"result"},
	)

	BlueprintCategories = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assessment_blueprint_categories",
			Help:    "Number of categories per generated blueprint",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		},
	)
)
