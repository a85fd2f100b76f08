//go:build unix

package shell

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configure puts the child in its own process group so cancellation reaches
// the whole tree started by the elevation tool.
func configure(cmd *exec.Cmd, _ Command) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGTERM)
	}
}
