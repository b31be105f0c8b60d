//go:build windows

package runner

import "os/exec"

// setProcessGroup is a no-op on Windows; process-tree kill is not attempted
// there and the deadline relies on context cancellation alone.
func setProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup falls back to killing just the direct child on Windows.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
