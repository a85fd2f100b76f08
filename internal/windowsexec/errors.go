// Package windowsexec wraps the Windows APIs used to relaunch a script with
// administrator rights.
package windowsexec

import "errors"

var (
	// ErrCancelledByUser is returned by RunAs when the UAC prompt was declined.
	ErrCancelledByUser = errors.New("the operation was canceled by the user")
	ErrUnsupported     = errors.New("ShellExecute is only available on windows")
)
