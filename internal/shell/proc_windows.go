//go:build windows

package shell

import (
	"os/exec"

	"github.com/zcf0508/sudo-prompt/internal/windowsexec"
)

func configure(cmd *exec.Cmd, c Command) {
	if c.Hidden {
		windowsexec.HideWindow(cmd)
	}
}
