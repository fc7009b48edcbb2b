// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_attempts_total",
			Help: "Total number of generation attempts",
		},
		[]string{"content_type"},
	)

	PipelinePassed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_passed_total",
			Help: "Total number of attempts that passed the quality gate",
		},
		[]string{"content_type"},
	)

	PipelineExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_exhausted_total",
			Help: "Total number of requests that exhausted all attempts",
		},
		[]string{"content_type"},
	)

	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_generation_failures_total",
			Help: "Total number of generation invoker errors",
		},
		[]string{"model"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_cache_hits_total",
			Help: "Total number of result cache hits",
		},
		[]string{"tier"},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	ValidatorUnavailable = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_validator_unavailable_total",
			Help: "Total number of validator unavailability events",
		},
		[]string{"validator"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_duration_seconds",
			Help: "Duration of end-to-end pipeline processing in seconds",
		},
		[]string{"content_type"},
	)

	QualityScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_quality_score",
			Help:    "Combined quality score per attempt",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"content_type"},
	)
)
