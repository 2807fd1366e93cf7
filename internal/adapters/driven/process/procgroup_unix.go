//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// killProcessGroup starts the command in a new process group and makes
// context cancellation signal the whole group.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative pid addresses the group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
