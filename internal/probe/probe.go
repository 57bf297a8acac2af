package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/loykin/sidekick/internal/metrics"
)

// Endpoint identifies the backend's HTTP listener. It is fixed for the
// lifetime of the spawned process.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (e Endpoint) BaseURL() string {
	host := e.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, e.Port)
}

func (e Endpoint) HealthURL() string   { return e.BaseURL() + "/api/health" }
func (e Endpoint) ShutdownURL() string { return e.BaseURL() + "/api/shutdown" }

// Result classifies a single health probe.
type Result int

const (
	// Healthy means the backend answered with a success status.
	Healthy Result = iota
	// NotReady means the server answered but is not finished initializing.
	NotReady
	// Unreachable means the request did not complete (refused, timeout).
	Unreachable
)

func (r Result) String() string {
	switch r {
	case Healthy:
		return "healthy"
	case NotReady:
		return "not_ready"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// DefaultTimeout bounds a single probe request.
const DefaultTimeout = 2 * time.Second

// Prober issues single bounded-timeout health checks. Retry policy
// lives in Poller, never here.
type Prober struct {
	client *http.Client
	logger *slog.Logger
}

func New(timeout time.Duration, logger *slog.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Check performs one GET against the health endpoint and classifies
// the outcome. Transport errors are absorbed into the classification,
// never returned.
func (p *Prober) Check(ctx context.Context, ep Endpoint) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.HealthURL(), nil)
	if err != nil {
		p.logger.Debug("failed to build health request", "error", err)
		metrics.IncProbe(Unreachable.String())
		return Unreachable
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("backend unreachable", "error", err)
		metrics.IncProbe(Unreachable.String())
		return Unreachable
	}
	defer func() { _ = resp.Body.Close() }()

	res := NotReady
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		res = Healthy
	}
	p.logger.Debug("health probe", "status", resp.StatusCode, "result", res.String())
	metrics.IncProbe(res.String())
	return res
}
