// Package metrics exposes Prometheus collectors for the task pipeline, the
// vendor clients, and the video renderer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "melodysnap"

var (
	// Tasks

	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "created_total",
		Help:      "Total tasks accepted by the orchestrator.",
	})

	TasksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "rejected_total",
		Help:      "Total task submissions refused before a pipeline started.",
	}, []string{"reason"})

	TaskTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "transitions_total",
		Help:      "Task status transitions, labelled by target status.",
	}, []string{"to"})

	TasksInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "inflight",
		Help:      "Tasks currently in pending or processing state.",
	})

	TaskDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "duration_seconds",
		Help:      "Time from task creation to its terminal status.",
		Buckets:   []float64{5, 15, 30, 60, 90, 120, 180, 240, 300, 420},
	}, []string{"status"})

	// Polling

	PollAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "poller",
		Name:      "attempts",
		Help:      "Status queries made per finished polling cycle.",
		Buckets:   prometheus.LinearBuckets(5, 5, 12),
	})

	// Video

	VideoRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "video",
		Name:      "renders_total",
		Help:      "Share video renders, labelled by outcome.",
	}, []string{"outcome"})

	VideoRenderSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "video",
		Name:      "render_duration_seconds",
		Help:      "Wall time of successful share video renders.",
		Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
	})

	// HTTP

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests, labelled by method, route pattern and status code.",
	}, []string{"method", "route", "code"})

	HTTPRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
