//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// configureProcess puts the tool in its own process group so cancellation
// reaches every process it forked.
func configureProcess(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Don't let exec.CommandContext kill with SIGKILL immediately
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
}

// killGroup kills whatever is left of the tool's process group, typically
// background children still holding the output pipes.
func killGroup(c *exec.Cmd) {
	if c.Process == nil {
		return
	}
	_ = syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
}
