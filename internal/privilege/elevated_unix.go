//go:build unix

package privilege

import "golang.org/x/sys/unix"

// IsElevated reports whether the current process already runs as root.
func IsElevated() bool {
	return unix.Geteuid() == 0
}
