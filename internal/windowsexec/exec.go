//go:build windows

package windowsexec

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// IsElevated reports whether the current process token is elevated.
func IsElevated() bool {
	token := windows.GetCurrentProcessToken()
	return token.IsElevated()
}

// HideWindow starts cmd without a console window.
func HideWindow(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.HideWindow = true
	cmd.SysProcAttr.CreationFlags |= windows.CREATE_NO_WINDOW
}

// RunAs launches file through ShellExecute with the "runas" verb, which shows
// the UAC prompt. It returns once the prompt was answered and the process was
// created; it does not wait for the process to exit.
// See: https://learn.microsoft.com/en-us/windows/win32/api/shellapi/nf-shellapi-shellexecutew
func RunAs(file, directory string, hidden bool) error {
	lpVerb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return fmt.Errorf("converting verb to ptr: %w", err)
	}
	lpFile, err := windows.UTF16PtrFromString(file)
	if err != nil {
		return fmt.Errorf("converting file to ptr: %w", err)
	}
	lpDirectory, err := windows.UTF16PtrFromString(directory)
	if err != nil {
		return fmt.Errorf("converting directory to ptr: %w", err)
	}

	show := int32(windows.SW_NORMAL)
	if hidden {
		show = windows.SW_HIDE
	}

	if err := windows.ShellExecute(0, lpVerb, lpFile, nil, lpDirectory, show); err != nil {
		if errors.Is(err, windows.ERROR_CANCELLED) {
			return ErrCancelledByUser
		}
		return fmt.Errorf("calling ShellExecute: %w", err)
	}
	return nil
}
