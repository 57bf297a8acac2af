package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loykin/sidekick/internal/history"
	"github.com/loykin/sidekick/internal/metrics"
	"github.com/loykin/sidekick/internal/probe"
	"github.com/loykin/sidekick/internal/shutdown"
	"github.com/loykin/sidekick/internal/sidecar"
	"github.com/loykin/sidekick/internal/ui"
)

// Backend is the supervised child process, satisfied by
// *sidecar.Supervisor.
type Backend interface {
	Start() error
	Kill() error
	Snapshot() sidecar.Status
}

// ReadinessWaiter blocks until the backend is healthy or the attempt
// budget runs out, satisfied by *probe.Poller.
type ReadinessWaiter interface {
	WaitUntilReady(ctx context.Context, ep probe.Endpoint) bool
}

// Coordinator drives the graceful-then-forceful exit, satisfied by
// *shutdown.Coordinator.
type Coordinator interface {
	Shutdown(ctx context.Context, ep probe.Endpoint, k shutdown.Killer) shutdown.Outcome
}

// Options configures an Orchestrator. Zero values fall back to the
// package defaults of the respective components.
type Options struct {
	Spec     sidecar.Spec
	Endpoint probe.Endpoint

	MaxAttempts     int
	Interval        time.Duration
	ProbeTimeout    time.Duration
	ShutdownTimeout time.Duration
	GracePeriod     time.Duration

	// FailureDisplayDelay keeps the failure message on screen briefly
	// before the process exits non-zero.
	FailureDisplayDelay time.Duration

	Host   ui.Host
	Sink   history.Sink // optional launch-record destination
	Logger *slog.Logger
}

const DefaultFailureDisplayDelay = 3 * time.Second

// Orchestrator composes supervisor, poller, coordinator and UI host
// into the full startup / ready / running / shutdown sequence.
type Orchestrator struct {
	spec     sidecar.Spec
	endpoint probe.Endpoint

	backend     Backend
	waiter      ReadinessWaiter
	coordinator Coordinator
	host        ui.Host
	sink        history.Sink
	logger      *slog.Logger
	machine     *machine

	attempts     atomic.Int32
	displayDelay time.Duration
	sleep        func(time.Duration)

	exitOnce sync.Once
	exitCh   chan struct{}
}

// countingSink counts status pushes, one per poll attempt, on their
// way to the splash surface.
type countingSink struct {
	inner    probe.StatusSink
	attempts *atomic.Int32
}

func (c countingSink) UpdateStatus(text string) error {
	c.attempts.Add(1)
	return c.inner.UpdateStatus(text)
}

func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	host := opts.Host
	if host == nil {
		host = ui.LogHost{Logger: logger}
	}
	if opts.FailureDisplayDelay <= 0 {
		opts.FailureDisplayDelay = DefaultFailureDisplayDelay
	}

	o := &Orchestrator{
		spec:         opts.Spec,
		endpoint:     opts.Endpoint,
		backend:      sidecar.New(opts.Spec),
		coordinator:  shutdown.New(opts.ShutdownTimeout, opts.GracePeriod, logger),
		host:         host,
		sink:         opts.Sink,
		logger:       logger,
		machine:      newMachine(logger),
		displayDelay: opts.FailureDisplayDelay,
		sleep:        time.Sleep,
		exitCh:       make(chan struct{}, 1),
	}
	sink := countingSink{
		inner:    ui.StatusSink{Host: host, WindowID: ui.SplashWindowID},
		attempts: &o.attempts,
	}
	prober := probe.New(opts.ProbeTimeout, logger)
	o.waiter = probe.NewPoller(prober, sink, opts.MaxAttempts, opts.Interval, logger)
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State { return o.machine.State() }

// Backend returns a snapshot of the supervised process.
func (o *Orchestrator) Backend() sidecar.Status { return o.backend.Snapshot() }

// Attempts returns the number of readiness probes issued so far.
func (o *Orchestrator) Attempts() int { return int(o.attempts.Load()) }

// RequestExit delivers the host environment's single exit-request
// event. Repeated calls are no-ops.
func (o *Orchestrator) RequestExit() {
	o.exitOnce.Do(func() { o.exitCh <- struct{}{} })
}

// Run executes the full lifecycle and returns the process exit code.
// The readiness wait runs on its own goroutine so the calling control
// path never sits in the poll loop's sleep. There is no cancellation
// of an in-flight poll: shutdown is assumed to follow Running, and an
// exit request arriving earlier is honored as soon as the poll
// resolves.
func (o *Orchestrator) Run(ctx context.Context) int {
	o.showSplash()

	if err := o.backend.Start(); err != nil {
		o.logger.Error("failed to launch backend", "error", err)
		o.fail("Failed to launch backend: " + err.Error())
		o.record(time.Time{}, time.Time{}, false, "", history.ReasonSpawnFailed)
		return 1
	}
	spawnedAt := time.Now()
	_ = o.machine.transitionTo(WaitingForReady, "backend spawned")

	readyCh := make(chan bool, 1)
	go func() { readyCh <- o.waiter.WaitUntilReady(ctx, o.endpoint) }()
	ready := <-readyCh

	if !ready {
		o.fail("Backend failed to start. Check the logs and try again.")
		_ = o.backend.Kill()
		o.record(spawnedAt, time.Time{}, false, "", history.ReasonReadinessTimeout)
		return 1
	}
	readyAt := time.Now()
	metrics.ObserveReadyDuration(readyAt.Sub(spawnedAt).Seconds())
	_ = o.machine.transitionTo(Running, "backend healthy")
	o.showMain()

	select {
	case <-o.exitCh:
	case <-ctx.Done():
	}
	_ = o.machine.transitionTo(ShuttingDown, "exit requested")

	// The surrounding context may already be canceled; shutdown gets
	// its own bounded lifetime instead.
	outcome := o.coordinator.Shutdown(context.Background(), o.endpoint, o.backend)
	_ = o.machine.transitionTo(Terminated, outcome.String())
	o.record(spawnedAt, readyAt, true, outcome.String(), history.ReasonExitRequested)
	return 0
}

func (o *Orchestrator) showSplash() {
	opts := ui.WindowOptions{Title: o.spec.Name, Width: 400, Height: 300}
	if err := o.host.CreateWindow(ui.SplashWindowID, "", opts); err != nil {
		o.logger.Debug("splash window not created", "error", err)
	}
	if err := o.host.ShowWindow(ui.SplashWindowID); err != nil {
		o.logger.Debug("splash window not shown", "error", err)
	}
}

func (o *Orchestrator) showMain() {
	opts := ui.WindowOptions{
		Title:     o.spec.Name,
		Width:     1200,
		Height:    800,
		MinWidth:  800,
		MinHeight: 600,
	}
	if err := o.host.CreateWindow(ui.MainWindowID, o.endpoint.BaseURL(), opts); err != nil {
		o.logger.Debug("main window not created", "error", err)
	}
	if err := o.host.ShowWindow(ui.MainWindowID); err != nil {
		o.logger.Debug("main window not shown", "error", err)
	}
	if err := o.host.CloseWindow(ui.SplashWindowID); err != nil {
		o.logger.Debug("splash window not closed", "error", err)
	}
}

// fail surfaces a readable message, keeps it visible for the display
// delay, and settles the machine in Terminated.
func (o *Orchestrator) fail(msg string) {
	_ = o.machine.transitionTo(Failed, msg)
	if err := o.host.UpdateStatusText(ui.SplashWindowID, msg); err != nil {
		o.logger.Debug("failure message not delivered", "error", err)
	}
	o.sleep(o.displayDelay)
	_ = o.machine.transitionTo(Terminated, "failure displayed")
}

func (o *Orchestrator) record(spawnedAt, readyAt time.Time, ready bool, outcome, reason string) {
	if o.sink == nil {
		return
	}
	st := o.backend.Snapshot()
	rec := history.Record{
		Name:            o.spec.Name,
		PID:             st.PID,
		SpawnedAt:       spawnedAt,
		ReadyAt:         readyAt,
		Attempts:        o.Attempts(),
		Ready:           ready,
		ShutdownOutcome: outcome,
		ExitReason:      reason,
		FinishedAt:      time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.sink.Send(ctx, rec); err != nil {
		o.logger.Warn("launch record not persisted", "error", err)
	}
}
