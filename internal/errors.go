package internal

import (
	"errors"
	"fmt"
)

// ErrSilence is returned by commands that already reported their failure.
var ErrSilence = errors.New("silent error")

// ExitError asks main to exit with Code instead of 1. It lets RunE handlers
// hand back the exit status of an elevated command without calling os.Exit.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }
