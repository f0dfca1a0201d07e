// Package metrics exposes Prometheus instrumentation for the engine
// and the LLM boundary.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narramancer_turns_total",
			Help: "Player turns processed, by kind (chat, roll, new_game) and result (ok, rejected, error).",
		},
		[]string{"kind", "result"},
	)

	RollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narramancer_rolls_total",
			Help: "Dice rolls completed, by notation.",
		},
		[]string{"notation"},
	)

	PendingRollsFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "narramancer_pending_rolls_found_total",
			Help: "Roll-request markers detected in narrator output.",
		},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "narramancer_llm_request_duration_seconds",
			Help:    "Latency of LLM generate calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	LLMErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narramancer_llm_errors_total",
			Help: "LLM generate calls that failed.",
		},
		[]string{"provider"},
	)
)
