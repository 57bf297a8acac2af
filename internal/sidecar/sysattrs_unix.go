//go:build !windows

package sidecar

import "syscall"

// sysProcAttr puts the backend in its own process group so that a kill
// reaches the backend's own children too.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killGroup sends SIGKILL to the whole process group.
func killGroup(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
