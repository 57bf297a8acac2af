package sidecar

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/loykin/sidekick/internal/logger"
)

// Spec describes the backend sidecar to be spawned. The backend is an
// opaque executable; sidekick only knows its command line, its port
// contract and the extra environment it needs for production mode.
type Spec struct {
	Name    string        `json:"name"`
	Command string        `json:"command"`  // executable plus arguments
	WorkDir string        `json:"work_dir"` // optional working dir
	Port    int           `json:"port"`     // exported to the child as PORT
	Env     []string      `json:"env"`      // extra KEY=VALUE entries
	Log     logger.Config `json:"log"`      // stdout/stderr capture
}

// BuildCommand constructs an *exec.Cmd for the spec's command string.
// Plain commands are split on whitespace; commands containing shell
// metacharacters are handed to /bin/sh -c.
func (s *Spec) BuildCommand() *exec.Cmd {
	cmdStr := strings.TrimSpace(s.Command)
	if cmdStr == "" {
		// #nosec G204
		return exec.Command("/bin/true")
	}
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		// #nosec G204
		return exec.Command("/bin/sh", "-c", cmdStr)
	}
	parts := strings.Fields(cmdStr)
	// #nosec G204
	return exec.Command(parts[0], parts[1:]...)
}

// Environment returns the child environment: the parent environment,
// the PORT contract, then the spec's extra entries. Later entries win
// under os/exec semantics.
func (s *Spec) Environment() []string {
	env := append([]string(nil), os.Environ()...)
	if s.Port > 0 {
		env = append(env, fmt.Sprintf("PORT=%d", s.Port))
	}
	env = append(env, s.Env...)
	return env
}
