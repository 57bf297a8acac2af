// Package ui defines the window-host collaborator boundary. sidekick
// only calls these operations; the desktop toolkit behind them lives
// outside this module.
package ui

import "log/slog"

// Window identifiers used by the orchestrator.
const (
	SplashWindowID = "splash"
	MainWindowID   = "main"
)

// WindowOptions carries the subset of window attributes sidekick sets.
type WindowOptions struct {
	Title     string
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
}

// Host is the windowing collaborator. Implementations must tolerate
// being invoked from a non-UI goroutine; all calls are best-effort
// from the orchestrator's point of view.
type Host interface {
	CreateWindow(id, contentURL string, opts WindowOptions) error
	ShowWindow(id string) error
	CloseWindow(id string) error
	UpdateStatusText(id, text string) error
}

// LogHost is the fallback host used when no desktop toolkit is
// attached: window operations become log lines. Useful headless and in
// tests.
type LogHost struct {
	Logger *slog.Logger
}

func (h LogHost) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h LogHost) CreateWindow(id, contentURL string, opts WindowOptions) error {
	h.logger().Info("create window", "id", id, "url", contentURL, "title", opts.Title)
	return nil
}

func (h LogHost) ShowWindow(id string) error {
	h.logger().Info("show window", "id", id)
	return nil
}

func (h LogHost) CloseWindow(id string) error {
	h.logger().Info("close window", "id", id)
	return nil
}

func (h LogHost) UpdateStatusText(id, text string) error {
	h.logger().Info("status", "id", id, "text", text)
	return nil
}

// StatusSink adapts one host window into the readiness poller's
// status-text target.
type StatusSink struct {
	Host     Host
	WindowID string
}

func (s StatusSink) UpdateStatus(text string) error {
	return s.Host.UpdateStatusText(s.WindowID, text)
}
