package privilege

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zcf0508/sudo-prompt/internal/shell"
	"github.com/zcf0508/sudo-prompt/internal/validate"
	"github.com/zcf0508/sudo-prompt/internal/windowsexec"
)

// minStatusSize is the smallest complete status file, e.g. "0\r".
const minStatusSize = 2

// Launcher relaunches a batch script with administrator rights. It returns
// once the UAC prompt was answered; it does not wait for the script.
type Launcher interface {
	Launch(ctx context.Context, script, dir string) error
}

// PowerShellLauncher elevates through "Start-Process -Verb runAs".
type PowerShellLauncher struct {
	Runner shell.Runner
}

func (l *PowerShellLauncher) Launch(ctx context.Context, script, _ string) error {
	res, err := l.Runner.Run(ctx, shell.Command{
		Name: "powershell.exe",
		Args: []string{
			"-NoProfile",
			"Start-Process",
			"-FilePath",
			// single quotes for PowerShell, with embedded quotes escaped by a backtick
			"'" + strings.ReplaceAll(script, "'", "`'") + "'",
			"-WindowStyle", "hidden",
			"-Verb", "runAs",
		},
		Hidden: true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(err)
		}
		return ioFailure("start powershell", "", err)
	}
	// Windows localizes the "canceled by the user" message, so every failure
	// of Start-Process is treated as a denial. The command itself runs in a
	// separate process and cannot fail here.
	if res.ExitCode != 0 {
		return ErrPermissionDenied
	}
	return nil
}

// ShellExecuteLauncher elevates through the ShellExecute "runas" verb,
// without starting PowerShell.
type ShellExecuteLauncher struct{}

func (ShellExecuteLauncher) Launch(ctx context.Context, script, dir string) error {
	if err := checkpoint(ctx); err != nil {
		return err
	}
	err := windowsexec.RunAs(script, dir, true)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, windowsexec.ErrCancelledByUser):
		return ErrPermissionDenied
	case errors.Is(err, windowsexec.ErrUnsupported):
		return fmt.Errorf("%w: %v", ErrUnsupportedPlatform, err)
	default:
		return ioFailure("launch elevated script", script, err)
	}
}

type windowsStage struct {
	name string
	run  func(context.Context, WindowsPlan) error
}

func (e *Elevator) windowsStages() []windowsStage {
	return []windowsStage{
		{name: "writing execute script", run: e.windowsWriteExecuteScript},
		{name: "writing command script", run: e.windowsWriteCommandScript},
		{name: "launching elevated script", run: e.windowsElevate},
		{name: "waiting for status file", run: e.windowsWaitForStatus},
	}
}

func (e *Elevator) runWindows(ctx context.Context, p WindowsPlan) (Result, error) {
	if strings.Contains(p.Workspace, `"`) {
		return Result{}, invalid("temp dir", errors.New("workspace path cannot contain double quotes"))
	}
	for _, key := range validate.SortedKeys(p.Options.Env) {
		if strings.ContainsAny(p.Options.Env[key], "\r\n") {
			return Result{}, invalid("env", fmt.Errorf("value of %s spans several lines", key))
		}
	}

	_, release, err := e.acquire(p.Workspace)
	if err != nil {
		return Result{}, err
	}
	defer release()

	logger := e.logger.WithField("workspace", p.Workspace)
	for _, stage := range e.windowsStages() {
		if err := checkpoint(ctx); err != nil {
			return Result{}, err
		}
		logger.Debug(stage.name)
		if err := stage.run(ctx, p); err != nil {
			return Result{}, err
		}
	}

	c, err := readCompletion(p.Status, p.Stdout, p.Stderr)
	if err != nil {
		return Result{}, err
	}
	return normalizeCompletion(p.Command, c)
}

func (e *Elevator) windowsWriteExecuteScript(_ context.Context, p WindowsPlan) error {
	script := strings.Join([]string{
		"@echo off",
		`call "` + p.CommandScript + `" > "` + p.Stdout + `" 2> "` + p.Stderr + `"`,
		`(echo %ERRORLEVEL%) > "` + p.Status + `"`,
	}, "\r\n")
	if err := e.cfg.WriteFile(p.ExecuteScript, []byte(script), 0o644); err != nil {
		return ioFailure("write execute script", p.ExecuteScript, err)
	}
	return nil
}

func (e *Elevator) windowsWriteCommandScript(_ context.Context, p WindowsPlan) error {
	var lines []string
	for _, key := range validate.SortedKeys(p.Options.Env) {
		lines = append(lines, "set "+key+"="+validate.EscapeCaret(p.Options.Env[key]))
	}
	lines = append(lines, p.Command)

	if err := e.cfg.WriteFile(p.CommandScript, []byte(strings.Join(lines, "\r\n")), 0o644); err != nil {
		return ioFailure("write command script", p.CommandScript, err)
	}
	return nil
}

func (e *Elevator) windowsElevate(ctx context.Context, p WindowsPlan) error {
	return e.cfg.Launcher.Launch(ctx, p.ExecuteScript, p.Workspace)
}

// windowsWaitForStatus polls until the elevated script wrote its status file.
// The elevated process cannot report back directly, so the file is the only
// completion signal. If after a poll neither the status nor the stdout file
// exists, execute.bat never ran: a passwordless administrator clicking Yes
// lets Start-Process succeed without running anything.
func (e *Elevator) windowsWaitForStatus(ctx context.Context, p WindowsPlan) error {
	deadline := time.NewTimer(e.cfg.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		size, found, err := e.fileSize(p.Status)
		if err != nil {
			return err
		}
		if found && size >= minStatusSize {
			return nil
		}

		select {
		case <-ctx.Done():
			return cancelled(ctx.Err())
		case <-deadline.C:
			return fmt.Errorf("%w after %s", ErrTimeout, e.cfg.Timeout)
		case <-ticker.C:
		}

		if found {
			continue
		}
		_, stdoutFound, err := e.fileSize(p.Stdout)
		if err != nil {
			return err
		}
		if !stdoutFound {
			if _, found, err = e.fileSize(p.Status); err != nil {
				return err
			}
			if !found {
				return ErrPermissionDenied
			}
		}
	}
}

func (e *Elevator) fileSize(path string) (int64, bool, error) {
	info, err := e.cfg.Stat(path)
	if err != nil {
		if missing(err) {
			return 0, false, nil
		}
		return 0, false, ioFailure("stat", path, err)
	}
	return info.Size(), true, nil
}
