package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/loykin/sidekick/internal/metrics"
	"github.com/loykin/sidekick/internal/probe"
)

// Outcome classifies how the backend went down.
type Outcome int

const (
	// GracefulAcked: the backend acknowledged the shutdown request and
	// is terminating itself.
	GracefulAcked Outcome = iota
	// GracefulTimedOut: the shutdown request did not complete in time.
	GracefulTimedOut
	// Unreachable: the backend refused the connection outright.
	Unreachable
	// ForcedKill: the supervisor killed the process after the graceful
	// path failed.
	ForcedKill
)

func (o Outcome) String() string {
	switch o {
	case GracefulAcked:
		return "graceful_acked"
	case GracefulTimedOut:
		return "graceful_timed_out"
	case Unreachable:
		return "unreachable"
	case ForcedKill:
		return "forced_kill"
	default:
		return "unknown"
	}
}

// Killer terminates the backend process unconditionally.
type Killer interface {
	Kill() error
}

// Defaults for the graceful window. Total worst-case wall time is
// RequestTimeout + GracePeriod; no shutdown path blocks beyond that.
const (
	DefaultRequestTimeout = 2 * time.Second
	DefaultGracePeriod    = 2 * time.Second
)

// Coordinator drives exit: ask the backend to shut itself down, and
// kill it if that doesn't work.
type Coordinator struct {
	client *http.Client
	grace  time.Duration
	logger *slog.Logger

	sleep func(time.Duration) // test seam for the grace wait
}

func New(requestTimeout, grace time.Duration, logger *slog.Logger) *Coordinator {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		client: &http.Client{Timeout: requestTimeout},
		grace:  grace,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Shutdown posts to the backend's shutdown endpoint. A success status
// means the backend terminates itself and its children; the grace wait
// gives its process tree time to exit. Any failure of the graceful
// path falls through to a forced kill. Request errors are logged and
// absorbed, never surfaced.
func (c *Coordinator) Shutdown(ctx context.Context, ep probe.Endpoint, k Killer) Outcome {
	outcome := c.requestGraceful(ctx, ep)
	if outcome == GracefulAcked {
		c.sleep(c.grace)
		metrics.IncShutdownOutcome(outcome.String())
		return GracefulAcked
	}

	c.logger.Warn("graceful shutdown failed, killing backend", "reason", outcome.String())
	if err := k.Kill(); err != nil {
		c.logger.Error("forced kill failed", "error", err)
	}
	metrics.IncShutdownOutcome(ForcedKill.String())
	return ForcedKill
}

func (c *Coordinator) requestGraceful(ctx context.Context, ep probe.Endpoint) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.ShutdownURL(), nil)
	if err != nil {
		c.logger.Debug("failed to build shutdown request", "error", err)
		return Unreachable
	}
	resp, err := c.client.Do(req)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			c.logger.Debug("shutdown request timed out", "error", err)
			return GracefulTimedOut
		}
		c.logger.Debug("shutdown endpoint unreachable", "error", err)
		return Unreachable
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("backend acknowledged shutdown")
		return GracefulAcked
	}
	c.logger.Debug("shutdown request rejected", "status", resp.StatusCode)
	return Unreachable
}
