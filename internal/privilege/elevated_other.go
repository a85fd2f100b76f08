//go:build !unix && !windows

package privilege

// IsElevated is always false on platforms without an elevation model.
func IsElevated() bool { return false }
