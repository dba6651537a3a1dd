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

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacancy_http_requests_total",
			Help: "HTTP requests served by the vacancy API",
		},
		[]string{"method", "route", "status"},
	)

	ApplicationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacancy_application_decisions_total",
			Help: "Evaluation outcomes by decision kind",
		},
		[]string{"decision"},
	)

	ComplianceViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacancy_compliance_violations_total",
			Help: "Submissions rejected at intake by violation kind",
		},
		[]string{"kind"},
	)

	AlertsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacancy_alerts_published_total",
			Help: "Alerts handed to a transport, by template, channel and result",
		},
		[]string{"template", "channel", "result"},
	)

	PendingSweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacancy_pending_sweep_runs_total",
			Help: "Manual review sweeps by result",
		},
		[]string{"result"},
	)

	ReadinessScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vacancy_readiness_score",
			Help: "Readiness score of the most recent vacancy report",
		},
	)
)

// Result labels for counters that track success and failure.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)
