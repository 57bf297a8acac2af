//go:build windows

package sidecar

import (
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

// killGroup kills the process itself; Windows has no process groups in
// the Unix sense, and the backend is expected to tear down its own
// children on the graceful path.
func killGroup(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
