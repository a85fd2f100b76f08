// Package sudoprompt runs a shell command with administrator rights after the
// user approved it in the operating system's own authorization prompt.
//
//	stdout, stderr, err := sudoprompt.Exec(ctx, "apt-get update", sudoprompt.Options{Name: "My Installer"})
//
// Linux prompts through kdesudo or pkexec, macOS through a prebuilt applet
// bundle (see Config.Applet) and Windows through UAC.
package sudoprompt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/log"
	"github.com/zcf0508/sudo-prompt/internal/privilege"
	"github.com/zcf0508/sudo-prompt/internal/validate"
)

// Result and error types of an execution.
type (
	Result             = privilege.Result
	CommandFailedError = privilege.CommandFailedError
	ValidationError    = privilege.ValidationError
	IOError            = privilege.IOError
)

var (
	ErrValidation          = privilege.ErrValidation
	ErrUnsupportedPlatform = privilege.ErrUnsupportedPlatform
	ErrNoAuthAgent         = privilege.ErrNoAuthAgent
	ErrPermissionDenied    = privilege.ErrPermissionDenied
	ErrIO                  = privilege.ErrIO
	ErrCancelled           = privilege.ErrCancelled
	ErrTimeout             = privilege.ErrTimeout
)

// Options describe one execution.
type Options struct {
	// Name is shown in the prompt: letters, digits and spaces, at most 70
	// characters. Derived from the executable name when empty.
	Name string
	// Icns is the path of a macOS icon resource shown in the prompt.
	Icns string
	// Env is exported into the environment of the elevated command.
	Env map[string]string
}

// Config tunes a Prompter. The zero value is usable except on macOS, which
// needs Applet or AppletData.
type Config struct {
	Logger *log.Logger
	// TempDir holds the per-call workspaces. Defaults to os.TempDir().
	TempDir string
	// WorkDir pins the directory the command runs in. When empty, the current
	// working directory at the time of each call is used.
	WorkDir string
	// Applet is the path of the zipped macOS applet bundle.
	Applet string
	// AppletData is the zipped applet itself, e.g. from go:embed. It takes
	// precedence over Applet.
	AppletData []byte
	// ShellExecute elevates on Windows through ShellExecute instead of
	// PowerShell.
	ShellExecute bool
	PollInterval time.Duration
	// Timeout bounds the wait for the elevated command on Windows.
	Timeout time.Duration
}

// Prompter runs elevated commands. It is safe for concurrent use.
type Prompter struct {
	elevator *privilege.Elevator
}

// New creates a Prompter.
func New(cfg Config) (*Prompter, error) {
	pcfg := privilege.Config{
		Logger:       cfg.Logger,
		TempDir:      cfg.TempDir,
		WorkDir:      cfg.WorkDir,
		PollInterval: cfg.PollInterval,
		Timeout:      cfg.Timeout,
	}
	switch {
	case cfg.AppletData != nil:
		pcfg.Applet = privilege.AppletBytes(cfg.AppletData)
	case cfg.Applet != "":
		pcfg.Applet = privilege.AppletFile(cfg.Applet)
	}
	if cfg.ShellExecute {
		pcfg.Launcher = privilege.ShellExecuteLauncher{}
	}
	return newPrompter(pcfg)
}

func newPrompter(cfg privilege.Config) (*Prompter, error) {
	e, err := privilege.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Prompter{elevator: e}, nil
}

// Exec runs command elevated and returns its output. A command that ran but
// exited non-zero yields a *CommandFailedError carrying its output.
func (p *Prompter) Exec(ctx context.Context, command string, opts Options) (stdout, stderr string, err error) {
	name := opts.Name
	if name == "" {
		name = validate.DefaultName()
	}
	res, err := p.elevator.Exec(ctx, command, privilege.Options{
		Name: name,
		Icns: opts.Icns,
		Env:  opts.Env,
	})
	return res.Stdout, res.Stderr, err
}

// ExecFunc runs command in the background and calls callback exactly once
// with the outcome.
func (p *Prompter) ExecFunc(ctx context.Context, command string, opts Options, callback func(err error, stdout, stderr string)) {
	go func() {
		stdout, stderr, err := p.Exec(ctx, command, opts)
		if callback != nil {
			callback(err, stdout, stderr)
		}
	}()
}

var defaultPrompter = sync.OnceValues(func() (*Prompter, error) {
	return New(Config{})
})

// Exec runs command elevated with the default Prompter.
func Exec(ctx context.Context, command string, opts Options) (stdout, stderr string, err error) {
	p, err := defaultPrompter()
	if err != nil {
		return "", "", fmt.Errorf("failed to create prompter: %w", err)
	}
	return p.Exec(ctx, command, opts)
}

// ExecFunc is the callback form of Exec.
func ExecFunc(ctx context.Context, command string, opts Options, callback func(err error, stdout, stderr string)) {
	p, err := defaultPrompter()
	if err != nil {
		if callback != nil {
			go callback(fmt.Errorf("failed to create prompter: %w", err), "", "")
		}
		return
	}
	p.ExecFunc(ctx, command, opts, callback)
}

// IsElevated reports whether the current process already runs with
// administrator rights.
func IsElevated() bool {
	return privilege.IsElevated()
}
