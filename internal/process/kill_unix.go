//go:build !windows

package process

import (
	"os"
	"syscall"
)

// KillProcessGroup kills a browser process and its renderer/GPU children by
// sending SIGKILL to the process group (negative PID).
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; launcher.Kill() provides the fallback for the main process.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// Alive reports whether a process with the given PID still exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}
