// Package privilege brokers the execution of a shell command through the
// native elevation prompt of the host: polkit or kdesudo on Linux, a signed
// applet on macOS and UAC on Windows.
package privilege

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/log"
	"github.com/zcf0508/sudo-prompt/internal/workspace"
)

// Elevator runs commands elevated. It holds no per-call state and may be
// used concurrently; every call gets its own workspace.
type Elevator struct {
	cfg    Config
	logger *log.Logger
}

// New creates an Elevator.
func New(cfg Config) (*Elevator, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Elevator{cfg: cfg, logger: cfg.Logger}, nil
}

// Exec runs command with administrator rights after the user granted
// permission in the OS prompt, and returns its captured output.
//
// Errors wrap one of ErrValidation, ErrUnsupportedPlatform, ErrNoAuthAgent,
// ErrPermissionDenied, ErrIO, ErrCancelled or ErrTimeout, or are a
// *CommandFailedError when the command itself exited non-zero.
func (e *Elevator) Exec(ctx context.Context, command string, opts Options) (Result, error) {
	if err := validateCommand(command); err != nil {
		return Result{}, err
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, cancelled(err)
	}

	start := time.Now()
	plan, err := e.Plan(command, opts)
	if err != nil {
		return Result{}, err
	}

	var res Result
	switch p := plan.(type) {
	case LinuxPlan:
		res, err = e.runLinux(ctx, p)
	case MacPlan:
		res, err = e.runMac(ctx, p)
	case WindowsPlan:
		res, err = e.runWindows(ctx, p)
	default:
		err = fmt.Errorf("%w: unknown plan %T", ErrUnsupportedPlatform, plan)
	}

	e.logger.WithField("platform", e.cfg.GOOS).
		WithField("took", time.Since(start).Round(time.Millisecond)).
		Debug("elevated execution finished")
	return res, err
}

// Plan selects the driver for the configured platform and derives the
// artifacts it will stage.
func (e *Elevator) Plan(command string, opts Options) (Plan, error) {
	workDir, err := e.workDir()
	if err != nil {
		return nil, err
	}
	inv := Invocation{
		Command: command,
		Options: opts,
		WorkDir: workDir,
	}

	switch e.cfg.GOOS {
	case "linux":
		tool, err := e.linuxTool()
		if err != nil {
			return nil, err
		}
		return LinuxPlan{Invocation: inv, Tool: tool}, nil
	case "darwin":
		if err := e.assignID(&inv); err != nil {
			return nil, err
		}
		return newMacPlan(inv, e.cfg.TempDir), nil
	case "windows":
		if err := e.assignID(&inv); err != nil {
			return nil, err
		}
		return newWindowsPlan(inv, e.cfg.TempDir), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, e.cfg.GOOS)
	}
}

// workDir is the configured override, or else the caller's current directory
// at the time of the call.
func (e *Elevator) workDir() (string, error) {
	if e.cfg.WorkDir != "" {
		return e.cfg.WorkDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", ioFailure("resolve working directory", "", err)
	}
	return wd, nil
}

func (e *Elevator) assignID(inv *Invocation) error {
	id, err := e.cfg.Identifiers.New(inv.Options.Name, inv.Command)
	if err != nil {
		return ioFailure("generate workspace identifier", "", err)
	}
	if id.Degraded {
		e.logger.WithField("id", id.Value).
			Warn("entropy source failed, workspace identifier was derived from the clock")
	}
	inv.ID = id
	return nil
}

// acquire creates the workspace of a plan. The returned release func removes
// it and must be deferred right away; a removal failure is logged and never
// replaces the outcome of the invocation.
func (e *Elevator) acquire(path string) (*workspace.Workspace, func(), error) {
	ws, err := workspace.Create(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, nil, ioFailure("create workspace", path, err)
	}
	release := func() {
		if err := ws.Remove(); err != nil {
			e.logger.WithError(err).WithField("workspace", ws.Path()).Warn("failed to remove workspace")
			return
		}
		e.logger.WithField("workspace", ws.Path()).Debug("workspace removed")
	}
	return ws, release, nil
}

// checkpoint stops a driver between two stages once ctx is done.
func checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	return nil
}

// missing reports whether err means the file is not there.
func missing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
