package lifecycle

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/loykin/sidekick/internal/metrics"
)

// State is the launcher's lifecycle state.
type State int

const (
	Launching State = iota
	WaitingForReady
	Running
	ShuttingDown
	Failed
	Terminated
)

func (s State) String() string {
	switch s {
	case Launching:
		return "launching"
	case WaitingForReady:
		return "waiting_for_ready"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting_down"
	case Failed:
		return "failed"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// validTransitions encodes the whole state graph. Terminated is
// absorbing; Failed only leads there.
var validTransitions = map[State][]State{
	Launching:       {WaitingForReady, Failed},
	WaitingForReady: {Running, Failed},
	Running:         {ShuttingDown},
	ShuttingDown:    {Terminated},
	Failed:          {Terminated},
	Terminated:      {},
}

// machine tracks the current state and refuses transitions the graph
// does not allow.
type machine struct {
	mu     sync.RWMutex
	state  State
	logger *slog.Logger
}

func newMachine(logger *slog.Logger) *machine {
	if logger == nil {
		logger = slog.Default()
	}
	metrics.SetLifecycleState(Launching.String(), true)
	return &machine{state: Launching, logger: logger}
}

func (m *machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *machine) transitionTo(to State, reason string) error {
	m.mu.Lock()
	from := m.state
	allowed := false
	for _, s := range validTransitions[from] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		return fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	m.state = to
	m.mu.Unlock()

	m.logger.Info("lifecycle transition", "from", from.String(), "to", to.String(), "reason", reason)
	metrics.SetLifecycleState(from.String(), false)
	metrics.SetLifecycleState(to.String(), true)
	return nil
}
