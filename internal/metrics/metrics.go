package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	backendSpawns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sidekick",
			Subsystem: "backend",
			Name:      "spawns_total",
			Help:      "Number of successful backend spawns.",
		},
	)
	spawnFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sidekick",
			Subsystem: "backend",
			Name:      "spawn_failures_total",
			Help:      "Number of backend spawn failures.",
		},
	)
	probeAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sidekick",
			Subsystem: "probe",
			Name:      "attempts_total",
			Help:      "Readiness probe attempts by result.",
		}, []string{"result"},
	)
	readyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sidekick",
			Subsystem: "backend",
			Name:      "ready_duration_seconds",
			Help:      "Time from spawn until the first healthy probe.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	shutdownOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sidekick",
			Subsystem: "shutdown",
			Name:      "outcomes_total",
			Help:      "Shutdown results by outcome.",
		}, []string{"outcome"},
	)
	lifecycleStates = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sidekick",
			Subsystem: "lifecycle",
			Name:      "state",
			Help:      "Current lifecycle state (1 = active state, 0 = inactive).",
		}, []string{"state"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{backendSpawns, spawnFailures, probeAttempts, readyDuration, shutdownOutcomes, lifecycleStates}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncSpawn() {
	if regOK.Load() {
		backendSpawns.Inc()
	}
}

func IncSpawnFailure() {
	if regOK.Load() {
		spawnFailures.Inc()
	}
}

func IncProbe(result string) {
	if regOK.Load() {
		probeAttempts.WithLabelValues(result).Inc()
	}
}

func ObserveReadyDuration(seconds float64) {
	if regOK.Load() {
		readyDuration.Observe(seconds)
	}
}

func IncShutdownOutcome(outcome string) {
	if regOK.Load() {
		shutdownOutcomes.WithLabelValues(outcome).Inc()
	}
}

func SetLifecycleState(state string, active bool) {
	if regOK.Load() {
		var v float64
		if active {
			v = 1
		}
		lifecycleStates.WithLabelValues(state).Set(v)
	}
}
