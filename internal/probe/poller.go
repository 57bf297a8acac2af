package probe

import (
	"context"
	"log/slog"
	"time"
)

// Default poll budget, matching the backend's observed worst-case
// startup (migrations included).
const (
	DefaultMaxAttempts = 60
	DefaultInterval    = time.Second
)

// Checker performs a single classified health probe.
type Checker interface {
	Check(ctx context.Context, ep Endpoint) Result
}

// StatusSink receives coarse human-readable phase updates during the
// readiness wait. Delivery is best-effort; errors are swallowed by the
// poller.
type StatusSink interface {
	UpdateStatus(text string) error
}

// PhaseText maps an attempt number to the splash phase shown to the
// user. The boundaries are display policy, not correctness.
func PhaseText(attempt int) string {
	switch {
	case attempt < 10:
		return "starting"
	case attempt < 30:
		return "initializing/migrating"
	default:
		return "almost ready"
	}
}

// Poller repeatedly probes the backend until it reports healthy or the
// attempt budget is exhausted.
type Poller struct {
	checker     Checker
	sink        StatusSink // optional
	maxAttempts int
	interval    time.Duration
	logger      *slog.Logger

	// sleep is the only suspension point of the loop; replaced in tests.
	sleep func(time.Duration)
}

func NewPoller(checker Checker, sink StatusSink, maxAttempts int, interval time.Duration, logger *slog.Logger) *Poller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		checker:     checker,
		sink:        sink,
		maxAttempts: maxAttempts,
		interval:    interval,
		logger:      logger,
		sleep:       time.Sleep,
	}
}

// WaitUntilReady polls until the first healthy probe (true) or until
// maxAttempts probes have all failed (false). It sleeps exactly
// interval between attempts and must never run on the UI control path.
// The loop is not cancelable; it always resolves on its own.
func (p *Poller) WaitUntilReady(ctx context.Context, ep Endpoint) bool {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		p.pushStatus(PhaseText(attempt))
		if p.checker.Check(ctx, ep) == Healthy {
			p.logger.Info("backend ready", "attempts", attempt)
			return true
		}
		p.logger.Debug("waiting for backend", "attempt", attempt, "max", p.maxAttempts)
		if attempt < p.maxAttempts {
			p.sleep(p.interval)
		}
	}
	p.logger.Error("backend did not become ready", "attempts", p.maxAttempts)
	return false
}

// pushStatus delivers a phase update to the sink when one is attached.
// A sink error (e.g. the splash surface is already gone) is dropped;
// the poller's correctness does not depend on the UI being present.
func (p *Poller) pushStatus(text string) {
	if p.sink == nil {
		return
	}
	if err := p.sink.UpdateStatus(text); err != nil {
		p.logger.Debug("status update not delivered", "error", err)
	}
}
