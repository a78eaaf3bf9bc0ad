package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lyre_job_polls_total",
		Help: "Job polls by outcome (transition, no_change, terminal, transient_error).",
	}, []string{"outcome"})

	jobTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lyre_job_transitions_total",
		Help: "Observed job status transitions by resulting status.",
	}, []string{"status"})

	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lyre_pipeline_runs_total",
		Help: "Result pipeline executions by outcome.",
	}, []string{"result"})

	hubSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lyre_event_subscribers",
		Help: "Currently connected live-update subscribers.",
	})
)
