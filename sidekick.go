package sidekick

import (
	"context"
	"net/http"
	"time"

	cfg "github.com/loykin/sidekick/internal/config"
	"github.com/loykin/sidekick/internal/history"
	"github.com/loykin/sidekick/internal/history/factory"
	"github.com/loykin/sidekick/internal/keymap"
	"github.com/loykin/sidekick/internal/lifecycle"
	"github.com/loykin/sidekick/internal/metrics"
	"github.com/loykin/sidekick/internal/probe"
	iapi "github.com/loykin/sidekick/internal/server"
	"github.com/loykin/sidekick/internal/shutdown"
	"github.com/loykin/sidekick/internal/sidecar"
	"github.com/loykin/sidekick/internal/ui"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Spec = sidecar.Spec

type Status = sidecar.Status

type Endpoint = probe.Endpoint

type State = lifecycle.State

type Options = lifecycle.Options

type ShutdownOutcome = shutdown.Outcome

type WindowHost = ui.Host

type WindowOptions = ui.WindowOptions

type HistorySink = history.Sink

type KeyChord = keymap.Chord

type KeyEvent = keymap.Event

// Launcher is a thin facade over internal/lifecycle.Orchestrator.
// It provides a stable public API for embedding.

type Launcher struct{ inner *lifecycle.Orchestrator }

func New(opts Options) *Launcher {
	return &Launcher{inner: lifecycle.New(opts)}
}

// Run drives the backend through launch, readiness, running and
// shutdown, returning the process exit code.
func (l *Launcher) Run(ctx context.Context) int { return l.inner.Run(ctx) }

func (l *Launcher) RequestExit()    { l.inner.RequestExit() }
func (l *Launcher) State() State    { return l.inner.State() }
func (l *Launcher) Backend() Status { return l.inner.Backend() }
func (l *Launcher) Attempts() int   { return l.inner.Attempts() }

func LoadConfig(path string) (cfg.Config, error) {
	return cfg.Load(path)
}

// NewHistorySink builds a launch-record sink from a DSN
// (sqlite path, postgres:// or clickhouse://).
func NewHistorySink(dsn string) (HistorySink, error) {
	return factory.NewSinkFromDSN(dsn)
}

// NewHTTPServer starts the control API server for the given launcher.
func NewHTTPServer(addr, basePath string, l *Launcher) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, l.inner)
}

// Keystroke helpers (public facade)

func ParseKeyChord(combo string) KeyChord { return keymap.ParseChord(combo, nil) }
func PlanKeyEvents(action keymap.Action, chord KeyChord) []KeyEvent {
	return keymap.Plan(action, chord)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the default registry.
// It returns any immediate listen error; otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
