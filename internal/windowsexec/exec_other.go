//go:build !windows

package windowsexec

// IsElevated is always false outside Windows.
func IsElevated() bool { return false }

// RunAs is only implemented on Windows.
func RunAs(file, directory string, hidden bool) error {
	return ErrUnsupported
}
