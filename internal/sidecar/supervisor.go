package sidecar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/loykin/sidekick/internal/metrics"
)

// ErrAlreadyStarted is returned when Start is called while a backend
// handle is live. Exactly one backend instance exists per supervisor.
var ErrAlreadyStarted = errors.New("backend already started")

// Status is a point-in-time snapshot of the supervised backend.
type Status struct {
	Name      string    `json:"name"`
	Running   bool      `json:"running"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	StoppedAt time.Time `json:"stopped_at"`
	ExitErr   error     `json:"exit_error,omitempty"`
}

// Supervisor owns the backend process handle. The spawning path writes
// the handle once; the shutdown path reads and clears it. Both go
// through the one mutex, which is the only synchronization the handle
// needs.
type Supervisor struct {
	mu        sync.Mutex
	spec      Spec
	cmd       *exec.Cmd
	status    Status
	waitDone  chan struct{} // closed by the reaper when cmd.Wait returns
	outCloser io.WriteCloser
	errCloser io.WriteCloser
}

func New(spec Spec) *Supervisor { return &Supervisor{spec: spec} }

// Start spawns the backend. A spawn failure is fatal to the caller and
// is never retried here: if the executable cannot be launched the
// environment is broken.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	spec := s.spec
	s.mu.Unlock()

	cmd := spec.BuildCommand()
	if spec.WorkDir != "" {
		cmd.Dir = spec.WorkDir
	}
	cmd.Env = spec.Environment()
	cmd.SysProcAttr = sysProcAttr()

	outW, errW, _ := spec.Log.Writers(spec.Name)
	if outW != nil {
		cmd.Stdout = outW
	} else {
		cmd.Stdout, _ = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	}
	if errW != nil {
		cmd.Stderr = errW
	} else {
		cmd.Stderr, _ = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	}

	if err := cmd.Start(); err != nil {
		if outW != nil {
			_ = outW.Close()
		}
		if errW != nil {
			_ = errW.Close()
		}
		metrics.IncSpawnFailure()
		return fmt.Errorf("spawn %s: %w", spec.Name, err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.waitDone = make(chan struct{})
	s.outCloser = outW
	s.errCloser = errW
	s.status = Status{
		Name:      spec.Name,
		Running:   true,
		PID:       cmd.Process.Pid,
		StartedAt: time.Now(),
	}
	done := s.waitDone
	s.mu.Unlock()

	metrics.IncSpawn()
	go s.reap(cmd, done)
	return nil
}

// reap waits for the child to exit and records the outcome. It is the
// only goroutine that calls cmd.Wait; Kill coordinates through
// waitDone instead of waiting itself.
func (s *Supervisor) reap(cmd *exec.Cmd, done chan struct{}) {
	err := cmd.Wait()
	s.mu.Lock()
	s.status.Running = false
	s.status.StoppedAt = time.Now()
	s.status.ExitErr = err
	s.closeWritersLocked()
	s.mu.Unlock()
	close(done)
}

// Kill sends an unconditional kill to the backend's process group and
// clears the handle. It is idempotent: killing an already-exited or
// never-started backend is a no-op.
func (s *Supervisor) Kill() error {
	s.mu.Lock()
	cmd := s.cmd
	done := s.waitDone
	s.cmd = nil
	s.waitDone = nil
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	_ = killGroup(cmd.Process.Pid)
	if done != nil {
		select {
		case <-done:
			// reaped
		case <-time.After(200 * time.Millisecond):
			// best-effort; the reaper finishes on its own
		}
	}
	return nil
}

// Alive reports whether the backend process is currently running.
func (s *Supervisor) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil && s.status.Running
}

// Snapshot returns a copy of the current status.
func (s *Supervisor) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// WaitDone exposes the reaper's completion channel, or nil when no
// backend has been started. Used by callers that need to observe a
// natural exit.
func (s *Supervisor) WaitDone() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitDone
}

func (s *Supervisor) closeWritersLocked() {
	if s.outCloser != nil {
		_ = s.outCloser.Close()
		s.outCloser = nil
	}
	if s.errCloser != nil {
		_ = s.errCloser.Close()
		s.errCloser = nil
	}
}
