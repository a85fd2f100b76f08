// Package logutil holds the caarlos0/log helpers shared by the commands.
package logutil

import (
	"io"
	"time"

	"github.com/caarlos0/log"
)

// New returns a logger writing to w, at debug level when verbose.
func New(w io.Writer, verbose bool) *log.Logger {
	logger := log.New(w)
	if verbose {
		logger.Level = log.DebugLevel
	}
	return logger
}

// LogDuration reports the time spent in step since start, one padding level
// below the step's own log line.
func LogDuration(logger *log.Logger, start time.Time, step string) {
	logger.IncreasePadding()
	logger.WithField("took", time.Since(start).Round(time.Millisecond)).Debug(step)
	logger.ResetPadding()
}
