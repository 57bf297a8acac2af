package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loykin/sidekick/internal/lifecycle"
	"github.com/loykin/sidekick/internal/metrics"
	"github.com/loykin/sidekick/internal/sidecar"
)

// Launcher is the orchestrator surface the control API exposes,
// satisfied by *lifecycle.Orchestrator.
type Launcher interface {
	State() lifecycle.State
	Backend() sidecar.Status
	Attempts() int
	RequestExit()
}

// Router provides embeddable HTTP handlers for observing and stopping
// the launcher.
// Endpoints:
//
//	GET  {basePath}/api/status   launcher state + backend snapshot
//	POST {basePath}/api/exit     request shutdown, returns immediately
//	GET  {basePath}/metrics      prometheus exposition
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	launcher Launcher
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
func NewRouter(l Launcher, basePath string) *Router {
	return &Router{launcher: l, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted
// in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/api/status", r.handleStatus)
	group.POST("/api/exit", r.handleExit)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr, basePath string, l Launcher) (*http.Server, error) {
	r := NewRouter(l, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

type statusResp struct {
	State    string        `json:"state"`
	Attempts int           `json:"attempts"`
	Backend  backendStatus `json:"backend"`
}

type backendStatus struct {
	Name      string     `json:"name"`
	Running   bool       `json:"running"`
	PID       int        `json:"pid"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	ExitError string     `json:"exit_error,omitempty"`
}

type okResp struct {
	OK bool `json:"ok"`
}

func (r *Router) handleStatus(c *gin.Context) {
	st := r.launcher.Backend()
	resp := statusResp{
		State:    r.launcher.State().String(),
		Attempts: r.launcher.Attempts(),
		Backend: backendStatus{
			Name:    st.Name,
			Running: st.Running,
			PID:     st.PID,
		},
	}
	if !st.StartedAt.IsZero() {
		resp.Backend.StartedAt = &st.StartedAt
	}
	if !st.StoppedAt.IsZero() {
		resp.Backend.StoppedAt = &st.StoppedAt
	}
	if st.ExitErr != nil {
		resp.Backend.ExitError = st.ExitErr.Error()
	}
	writeJSON(c, http.StatusOK, resp)
}

func (r *Router) handleExit(c *gin.Context) {
	r.launcher.RequestExit()
	writeJSON(c, http.StatusOK, okResp{OK: true})
}
