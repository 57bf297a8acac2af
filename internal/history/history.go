package history

import (
	"context"
	"time"
)

// Record captures one backend run from spawn to termination.
type Record struct {
	Name            string    `json:"name"`
	PID             int       `json:"pid"`
	SpawnedAt       time.Time `json:"spawned_at"`
	ReadyAt         time.Time `json:"ready_at,omitempty"` // zero when never ready
	Attempts        int       `json:"attempts"`
	Ready           bool      `json:"ready"`
	ShutdownOutcome string    `json:"shutdown_outcome,omitempty"`
	ExitReason      string    `json:"exit_reason"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Exit reasons recorded per run.
const (
	ReasonSpawnFailed      = "spawn_failed"
	ReasonReadinessTimeout = "readiness_timeout"
	ReasonExitRequested    = "exit_requested"
)

// Sink is a destination for launch records (local audit or fleet
// telemetry systems). Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, r Record) error
}
