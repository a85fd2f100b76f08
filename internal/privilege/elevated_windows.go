//go:build windows

package privilege

import "github.com/zcf0508/sudo-prompt/internal/windowsexec"

// IsElevated reports whether the current process token is elevated.
func IsElevated() bool {
	return windowsexec.IsElevated()
}
