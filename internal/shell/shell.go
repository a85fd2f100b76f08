// Package shell runs the external programs that broker elevation: pkexec,
// kdesudo, the macOS applet, defaults and PowerShell.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process was
// signalled on cancellation.
const waitDelay = 5 * time.Second

// Command describes one external process.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the caller's.
	Dir string
	// Hidden asks for no console window. Only honoured on Windows.
	Hidden bool
}

func (c Command) String() string {
	return fmt.Sprintf("%s %v", c.Name, c.Args)
}

// Result is the captured outcome of a process that ran to completion.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner starts a command and waits for it. A non-zero exit status is
// reported in Result.ExitCode, not as an error; errors mean the process could
// not be started or the context ended first.
type Runner interface {
	Run(ctx context.Context, c Command) (Result, error)
}

// ExecRunner is the os/exec backed Runner. Stdin is always the null device,
// so no launcher can block waiting on input.
type ExecRunner struct{}

// NewExecRunner returns the default Runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Name == "" {
		return Result{}, errors.New("no command provided")
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = nil
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	configure(cmd, c)

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			if res.ExitCode < 0 {
				res.ExitCode = 1
			}
			return res, nil
		}
		return res, fmt.Errorf("failed to run %s: %w", c.Name, err)
	}
	return res, nil
}

// Shell wraps a POSIX shell line into a Command for /bin/sh.
func Shell(line string) Command {
	return Command{Name: "/bin/sh", Args: []string{"-c", line}}
}

var _ Runner = (*ExecRunner)(nil)
