package privilege

import (
	"errors"
	"strings"

	"github.com/zcf0508/sudo-prompt/internal/identifier"
	"github.com/zcf0508/sudo-prompt/internal/validate"
)

// Options are the caller-facing knobs of one elevated execution.
type Options struct {
	// Name is shown in the prompt. Letters, digits and spaces only.
	Name string
	// Icns is an optional path to a macOS icon resource.
	Icns string
	// Env holds extra variables exported into the elevated environment.
	Env map[string]string
}

// Validate rejects options before any OS interaction happens.
func (o Options) Validate() error {
	if err := validate.ValidateName(o.Name); err != nil {
		return invalid("name", err)
	}
	if err := validate.ValidateIcon(o.Icns); err != nil {
		return invalid("icns", err)
	}
	if err := validate.ValidateEnv(o.Env); err != nil {
		return invalid("env", err)
	}
	return nil
}

// Invocation is the unit of work of a single call. It is never shared between
// calls.
type Invocation struct {
	Command string
	Options Options
	// WorkDir is preserved as the working directory of the elevated command.
	WorkDir string
	// ID names the workspace. Zero on Linux, which needs no workspace.
	ID identifier.ID
}

// Result is the normalized outcome of a successful execution.
type Result struct {
	Stdout string
	Stderr string
}

func validateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return invalid("command", errors.New("command is empty"))
	}
	if strings.ContainsRune(command, 0) {
		return invalid("command", errors.New("command contains a NUL byte"))
	}
	return nil
}
