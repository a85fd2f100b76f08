package privilege

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zcf0508/sudo-prompt/internal/shell"
	"github.com/zcf0508/sudo-prompt/internal/validate"
)

// AppletSource supplies the zip archive of the prebuilt, signed applet
// bundle. The archive holds the bundle's Contents/ tree.
type AppletSource interface {
	ReadApplet() ([]byte, error)
}

// AppletFile reads the applet archive from disk.
type AppletFile string

func (f AppletFile) ReadApplet() ([]byte, error) { return os.ReadFile(string(f)) }

// AppletBytes is an applet archive already in memory, typically embedded.
type AppletBytes []byte

func (b AppletBytes) ReadApplet() ([]byte, error) { return b, nil }

type macStage struct {
	name string
	run  func(context.Context, MacPlan) error
}

func (e *Elevator) macStages() []macStage {
	return []macStage{
		{name: "extracting applet", run: e.macApplet},
		{name: "copying icon", run: e.macIcon},
		{name: "patching property list", run: e.macPropertyList},
		{name: "writing command script", run: e.macCommand},
		{name: "launching applet", run: e.macOpen},
	}
}

func (e *Elevator) runMac(ctx context.Context, p MacPlan) (Result, error) {
	_, release, err := e.acquire(p.Workspace)
	if err != nil {
		return Result{}, err
	}
	defer release()

	logger := e.logger.WithField("workspace", p.Workspace)
	for _, stage := range e.macStages() {
		if err := checkpoint(ctx); err != nil {
			return Result{}, err
		}
		logger.Debug(stage.name)
		if err := stage.run(ctx, p); err != nil {
			return Result{}, err
		}
	}

	c, err := readCompletion(
		filepath.Join(p.MacOSDir(), "code"),
		filepath.Join(p.MacOSDir(), "stdout"),
		filepath.Join(p.MacOSDir(), "stderr"),
	)
	if err != nil {
		return Result{}, err
	}
	return normalizeCompletion(p.Command, c)
}

func (e *Elevator) macApplet(_ context.Context, p MacPlan) error {
	if e.cfg.Applet == nil {
		return ioFailure("read applet", "", ErrAppletMissing)
	}
	data, err := e.cfg.Applet.ReadApplet()
	if err != nil {
		return ioFailure("read applet", "", err)
	}
	if err := extractZip(data, p.Bundle); err != nil {
		return ioFailure("extract applet", p.Bundle, err)
	}
	return nil
}

func (e *Elevator) macIcon(_ context.Context, p MacPlan) error {
	if p.Options.Icns == "" {
		return nil
	}
	icon, err := os.ReadFile(p.Options.Icns)
	if err != nil {
		return ioFailure("read icon", p.Options.Icns, err)
	}
	if err := os.MkdirAll(filepath.Dir(p.Icon()), 0o755); err != nil {
		return ioFailure("create resources directory", filepath.Dir(p.Icon()), err)
	}
	if err := e.cfg.WriteFile(p.Icon(), icon, 0o644); err != nil {
		return ioFailure("write icon", p.Icon(), err)
	}
	return nil
}

// macPropertyList sets CFBundleName, the name macOS shows in the
// authorization dialog. defaults(1) expects the value single-quoted and
// cannot escape a single quote itself.
func (e *Elevator) macPropertyList(ctx context.Context, p MacPlan) error {
	value := p.Options.Name + " Password Prompt"
	if strings.Contains(value, "'") {
		return invalid("name", errors.New("value should not contain single quotes"))
	}

	res, err := e.cfg.Runner.Run(ctx, shell.Command{
		Name: "/usr/bin/defaults",
		Args: []string{"write", p.InfoPlist(), "CFBundleName", value},
	})
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(err)
		}
		return ioFailure("patch property list", p.InfoPlist(), err)
	}
	if res.ExitCode != 0 {
		return ioFailure("patch property list", p.InfoPlist(),
			fmt.Errorf("defaults exited with code %d: %s", res.ExitCode, strings.TrimSpace(string(res.Stderr))))
	}
	return nil
}

// macCommand writes the script the applet runs elevated. The cd only affects
// the subshell the applet starts for it.
func (e *Elevator) macCommand(_ context.Context, p MacPlan) error {
	lines := []string{`cd "` + validate.EscapePosix(p.WorkDir) + `"`}
	for _, key := range validate.SortedKeys(p.Options.Env) {
		lines = append(lines, `export `+key+`="`+validate.EscapePosix(p.Options.Env[key])+`"`)
	}
	lines = append(lines, p.Command)

	if err := e.cfg.WriteFile(p.Script(), []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return ioFailure("write command script", p.Script(), err)
	}
	return nil
}

// macOpen runs the applet binary directly, with the MacOS directory as
// working directory so the applet finds its scripts and writes its result
// files there.
func (e *Elevator) macOpen(ctx context.Context, p MacPlan) error {
	res, err := e.cfg.Runner.Run(ctx, shell.Command{Name: "./applet", Dir: p.MacOSDir()})
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(err)
		}
		return ioFailure("launch applet", filepath.Join(p.MacOSDir(), "applet"), err)
	}
	e.logger.WithField("exit_code", res.ExitCode).Debug("applet exited")
	return nil
}

// readCompletion loads the result files an elevated process left behind. A
// missing status file yields a completion that is not present; missing
// output files read as empty.
func readCompletion(statusPath, stdoutPath, stderrPath string) (completion, error) {
	status, err := os.ReadFile(statusPath)
	if err != nil {
		if missing(err) {
			return completion{}, nil
		}
		return completion{}, ioFailure("read exit status", statusPath, err)
	}

	c := completion{present: true, status: string(status)}
	if c.stdout, err = readOptional(stdoutPath); err != nil {
		return completion{}, err
	}
	if c.stderr, err = readOptional(stderrPath); err != nil {
		return completion{}, err
	}
	return c, nil
}

func readOptional(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if missing(err) {
			return "", nil
		}
		return "", ioFailure("read", path, err)
	}
	return string(b), nil
}

// extractZip unpacks archive into dest, overwriting existing files. Entries
// that would land outside dest, and symlinks, are rejected.
func extractZip(archive []byte, dest string) error {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("failed opening archive: %w", err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	for _, f := range r.File {
		name := filepath.FromSlash(strings.TrimSuffix(f.Name, "/"))
		if name == "" || !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry %q escapes the bundle", f.Name)
		}
		target := filepath.Join(dest, name)
		mode := f.Mode()

		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		case mode&os.ModeSymlink != 0:
			return fmt.Errorf("archive entry %q is a symlink", f.Name)
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target, mode.Perm()); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed opening %q: %w", f.Name, err)
	}
	defer src.Close() //nolint:errcheck // read-only

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close() //nolint:errcheck // the copy error wins
		return fmt.Errorf("failed extracting %q: %w", f.Name, err)
	}
	return dst.Close()
}
