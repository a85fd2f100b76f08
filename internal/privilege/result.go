package privilege

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zcf0508/sudo-prompt/internal/shell"
)

// magic is echoed by the elevated shell before the command runs, so its
// presence proves elevation was granted.
const magic = "SUDOPROMPT\n"

var (
	noAgentRe    = regexp.MustCompile(`No authentication agent found`)
	leadingIntRe = regexp.MustCompile(`^-?[0-9]+`)
)

// normalizeLinux classifies the raw output of the inline elevation tool.
func normalizeLinux(command string, raw shell.Result) (Result, error) {
	if !bytes.HasPrefix(raw.Stdout, []byte(magic)) {
		if noAgentRe.Match(raw.Stderr) {
			return Result{}, ErrNoAuthAgent
		}
		return Result{}, ErrPermissionDenied
	}

	res := Result{
		Stdout: string(raw.Stdout[len(magic):]),
		Stderr: string(raw.Stderr),
	}
	if raw.ExitCode != 0 {
		return Result{}, &CommandFailedError{
			Command:  command,
			ExitCode: raw.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}

// completion is what an elevated process left in the workspace: a status
// file holding the exit code, and the captured streams.
type completion struct {
	// present is false when the status file was never written.
	present bool
	status  string
	stdout  string
	stderr  string
}

// normalizeCompletion classifies the result files of the macOS and Windows
// drivers. A missing status file always means the user declined, never
// success.
func normalizeCompletion(command string, c completion) (Result, error) {
	if !c.present {
		return Result{}, ErrPermissionDenied
	}

	code, err := parseExitCode(c.status)
	if err != nil {
		return Result{}, err
	}
	if code != 0 {
		return Result{}, &CommandFailedError{
			Command:  command,
			ExitCode: code,
			Stdout:   c.stdout,
			Stderr:   c.stderr,
		}
	}
	return Result{Stdout: c.stdout, Stderr: c.stderr}, nil
}

// parseExitCode reads the leading integer of a status file.
func parseExitCode(status string) (int, error) {
	m := leadingIntRe.FindString(strings.TrimSpace(status))
	if m == "" {
		return 0, ioFailure("parse exit status", "", fmt.Errorf("%w: %q", ErrMalformedStatus, status))
	}
	code, err := strconv.Atoi(m)
	if err != nil {
		return 0, ioFailure("parse exit status", "", fmt.Errorf("%w: %v", ErrMalformedStatus, err))
	}
	return code, nil
}
