package privilege

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zcf0508/sudo-prompt/internal/shell"
	"github.com/zcf0508/sudo-prompt/internal/validate"
	"mvdan.cc/sh/v3/syntax"
)

// linuxTool returns the first configured elevation tool that exists.
func (e *Elevator) linuxTool() (string, error) {
	for _, path := range e.cfg.LinuxTools {
		_, err := e.cfg.Stat(path)
		if err == nil {
			return path, nil
		}
		if missing(err) {
			continue
		}
		return "", ioFailure("probe elevation tool", path, err)
	}
	return "", fmt.Errorf("%w: unable to find pkexec or kdesudo", ErrNoAuthAgent)
}

// linuxCommandLine composes the single shell line that changes to the
// caller's directory, exports the environment and hands a bash -c script to
// the elevation tool. The script prints the magic sentinel first.
//
// The command is only escaped for the surrounding double quotes, so $VAR,
// $(...) and backticks in it are expanded by the outer /bin/sh, unelevated
// and before the tool clears the environment.
func linuxCommandLine(p LinuxPlan) string {
	parts := []string{
		`cd "` + validate.EscapePosix(p.WorkDir) + `";`,
	}
	for _, key := range validate.SortedKeys(p.Options.Env) {
		parts = append(parts, `export `+key+`="`+validate.EscapePosix(p.Options.Env[key])+`";`)
	}

	parts = append(parts, `"`+validate.EscapePosix(p.Tool)+`"`)
	switch base := strings.ToLower(filepath.Base(p.Tool)); {
	case strings.Contains(base, "kdesudo"):
		parts = append(parts,
			"--comment",
			`"`+p.Options.Name+` wants to make changes. Enter your password to allow this."`,
			"-d",
			"--",
		)
	case strings.Contains(base, "pkexec"):
		parts = append(parts, "--disable-internal-agent")
	}

	parts = append(parts,
		`/bin/bash -c "echo `+strings.TrimSpace(magic)+`; `+validate.EscapeDoubleQuotes(p.Command)+`"`,
	)
	return strings.Join(parts, " ")
}

func (e *Elevator) runLinux(ctx context.Context, p LinuxPlan) (Result, error) {
	logger := e.logger.WithField("tool", p.Tool)

	line := linuxCommandLine(p)
	if _, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(line), ""); err != nil {
		return Result{}, invalid("command", fmt.Errorf("does not form a valid shell line: %w", err))
	}

	logger.Debug("prompting for elevation")
	raw, err := e.cfg.Runner.Run(ctx, shell.Shell(line))
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, cancelled(err)
		}
		return Result{}, ioFailure("run elevation tool", p.Tool, err)
	}
	logger.WithField("exit_code", raw.ExitCode).Debug("elevation tool exited")

	return normalizeLinux(p.Command, raw)
}
