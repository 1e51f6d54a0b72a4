package generator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every generator metric. The server exposes it on /metrics.
var Registry = prometheus.NewRegistry()

var (
	requestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_studio_generation_requests_total",
			Help: "Generation requests by final outcome.",
		},
		[]string{"outcome"}, // complete, failed, rejected
	)
	stageFailures = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_studio_stage_failures_total",
			Help: "Pipeline failures partitioned by stage.",
		},
		[]string{"stage"}, // content, image
	)
	callDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "post_studio_outbound_call_duration_seconds",
			Help:    "Duration of calls to the text and image services.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "status"}, // status: ok, error, cancelled
	)
)

const (
	outcomeComplete = "complete"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"

	stageContent = "content"
	stageImage   = "image"
)
