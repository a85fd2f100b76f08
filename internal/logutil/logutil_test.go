package logutil

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "quiet", verbose: false, wantDebug: false},
		{name: "verbose", verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, tc.verbose)
			logger.Debug("probing elevation tools")
			logger.Info("prompting")

			if got := strings.Contains(buf.String(), "probing elevation tools"); got != tc.wantDebug {
				t.Errorf("debug line logged = %v, want %v\n%s", got, tc.wantDebug, buf.String())
			}
			if !strings.Contains(buf.String(), "prompting") {
				t.Errorf("info line missing:\n%s", buf.String())
			}
		})
	}
}

func TestLogDuration(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, true)
	LogDuration(logger, time.Now().Add(-1500*time.Millisecond), "elevated execution")

	out := buf.String()
	if !strings.Contains(out, "elevated execution") || !strings.Contains(out, "took") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
