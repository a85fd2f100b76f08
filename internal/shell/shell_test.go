//go:build unix

package shell

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecRunnerRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		line       string
		wantStdout string
		wantStderr string
		wantCode   int
	}{
		{name: "stdout", line: "echo hello", wantStdout: "hello\n"},
		{name: "stderr", line: "echo oops >&2", wantStderr: "oops\n"},
		{name: "exit code", line: "echo partial; exit 3", wantStdout: "partial\n", wantCode: 3},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res, err := NewExecRunner().Run(context.Background(), Shell(tc.line))
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if string(res.Stdout) != tc.wantStdout {
				t.Errorf("stdout = %q, want %q", res.Stdout, tc.wantStdout)
			}
			if string(res.Stderr) != tc.wantStderr {
				t.Errorf("stderr = %q, want %q", res.Stderr, tc.wantStderr)
			}
			if res.ExitCode != tc.wantCode {
				t.Errorf("exit code = %d, want %d", res.ExitCode, tc.wantCode)
			}
		})
	}
}

func TestExecRunnerDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := NewExecRunner().Run(context.Background(), Command{Name: "/bin/sh", Args: []string{"-c", "pwd -P"}, Dir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Stdout) == 0 {
		t.Fatal("pwd printed nothing")
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	t.Parallel()

	_, err := NewExecRunner().Run(context.Background(), Command{Name: "/nonexistent/elevation-tool"})
	if err == nil {
		t.Fatal("Run() of a missing binary succeeded")
	}
}

func TestExecRunnerCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewExecRunner().Run(ctx, Shell("sleep 10"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("Run() took %s after cancellation", time.Since(start))
	}
}
