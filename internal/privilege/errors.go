package privilege

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedPlatform = errors.New("platform not yet supported")
	ErrNoAuthAgent         = errors.New("no polkit authentication agent found")
	ErrPermissionDenied    = errors.New("user did not grant permission")
	ErrIO                  = errors.New("i/o failure")
	ErrCancelled           = errors.New("elevation cancelled")
	ErrTimeout             = errors.New("timed out waiting for the elevated command")

	// ErrAppletMissing means no macOS applet archive was configured.
	ErrAppletMissing = errors.New("no applet archive configured")
	// ErrMalformedStatus means a completion file held no exit code.
	ErrMalformedStatus = errors.New("malformed exit status")
)

// ValidationError rejects caller input before any file system or OS
// interaction happened.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

// IOError reports a failure to stage or read workspace artifacts, or to start
// one of the helper programs.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// CommandFailedError is returned when elevation succeeded but the command
// itself exited with a non-zero status.
type CommandFailedError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, e.Command)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func ioFailure(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
