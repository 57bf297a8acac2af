package client

import "time"

// LauncherStatus is the control API's /api/status payload.
type LauncherStatus struct {
	State    string        `json:"state"`
	Attempts int           `json:"attempts"`
	Backend  BackendStatus `json:"backend"`
}

// BackendStatus describes the supervised backend process.
type BackendStatus struct {
	Name      string     `json:"name"`
	Running   bool       `json:"running"`
	PID       int        `json:"pid"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	ExitError string     `json:"exit_error,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}
