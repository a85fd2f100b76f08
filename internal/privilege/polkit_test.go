package privilege

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"

	"github.com/zcf0508/sudo-prompt/internal/shell"
)

func statOnly(paths ...string) func(string) (fs.FileInfo, error) {
	return func(name string) (fs.FileInfo, error) {
		for _, p := range paths {
			if p == name {
				return nil, nil
			}
		}
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
}

func TestLinuxToolSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stat     func(string) (fs.FileInfo, error)
		wantTool string
		wantErr  error
	}{
		{name: "kdesudo preferred", stat: statOnly("/usr/bin/kdesudo", "/usr/bin/pkexec"), wantTool: "/usr/bin/kdesudo"},
		{name: "pkexec fallback", stat: statOnly("/usr/bin/pkexec"), wantTool: "/usr/bin/pkexec"},
		{name: "none installed", stat: statOnly(), wantErr: ErrNoAuthAgent},
		{
			name: "not a directory is skipped",
			stat: func(name string) (fs.FileInfo, error) {
				if name == "/usr/bin/kdesudo" {
					return nil, &fs.PathError{Op: "stat", Path: name, Err: syscall.ENOTDIR}
				}
				return nil, nil
			},
			wantTool: "/usr/bin/pkexec",
		},
		{
			name: "permission error aborts",
			stat: func(name string) (fs.FileInfo, error) {
				return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrPermission}
			},
			wantErr: ErrIO,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := newTestElevator(t, Config{GOOS: "linux", Stat: tc.stat, Runner: &fakeRunner{}})
			plan, err := e.Plan("true", Options{Name: "Test"})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Plan() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			lp, ok := plan.(LinuxPlan)
			if !ok {
				t.Fatalf("Plan() = %T, want LinuxPlan", plan)
			}
			if lp.Tool != tc.wantTool {
				t.Errorf("tool = %s, want %s", lp.Tool, tc.wantTool)
			}
		})
	}
}

func TestLinuxCommandLine(t *testing.T) {
	t.Parallel()

	inv := Invocation{
		Command: `echo "hi"`,
		Options: Options{Name: "My App", Env: map[string]string{"B": `x"y`, "A": "$HOME"}},
		WorkDir: "/home/user/my dir",
	}

	tests := []struct {
		name string
		tool string
		want string
	}{
		{
			name: "pkexec",
			tool: "/usr/bin/pkexec",
			want: `cd "/home/user/my dir"; export A="\$HOME"; export B="x\"y"; "/usr/bin/pkexec" --disable-internal-agent /bin/bash -c "echo SUDOPROMPT; echo \"hi\""`,
		},
		{
			name: "kdesudo",
			tool: "/usr/bin/kdesudo",
			want: `cd "/home/user/my dir"; export A="\$HOME"; export B="x\"y"; "/usr/bin/kdesudo" --comment "My App wants to make changes. Enter your password to allow this." -d -- /bin/bash -c "echo SUDOPROMPT; echo \"hi\""`,
		},
	}

	for _, tt := range tests {
		got := linuxCommandLine(LinuxPlan{Invocation: inv, Tool: tt.tool})
		if got != tt.want {
			t.Errorf("%s:\n got %s\nwant %s", tt.name, got, tt.want)
		}
	}
}

func TestRunLinux(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		result     shell.Result
		runErr     error
		wantStdout string
		wantErr    error
	}{
		{name: "user grants", result: shell.Result{Stdout: []byte("SUDOPROMPT\nhello\n")}, wantStdout: "hello\n"},
		{name: "user denies", result: shell.Result{Stderr: []byte("Request dismissed\n"), ExitCode: 126}, wantErr: ErrPermissionDenied},
		{name: "no agent", result: shell.Result{Stderr: []byte("No authentication agent found.\n"), ExitCode: 127}, wantErr: ErrNoAuthAgent},
		{name: "shell missing", runErr: errors.New("fork/exec /bin/sh: no such file or directory"), wantErr: ErrIO},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{fn: func(context.Context, shell.Command) (shell.Result, error) {
				return tc.result, tc.runErr
			}}
			e := newTestElevator(t, Config{GOOS: "linux", Stat: statOnly("/usr/bin/pkexec"), Runner: runner})

			res, err := e.Exec(context.Background(), "echo hello", Options{Name: "Test"})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Exec() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Exec() error = %v", err)
			}
			if res.Stdout != tc.wantStdout {
				t.Errorf("stdout = %q, want %q", res.Stdout, tc.wantStdout)
			}

			calls := runner.commands()
			if len(calls) != 1 || calls[0].Name != "/bin/sh" {
				t.Fatalf("runner calls = %v, want one /bin/sh call", calls)
			}
			if !strings.Contains(calls[0].Args[1], "--disable-internal-agent") {
				t.Errorf("shell line %q misses the pkexec flag", calls[0].Args[1])
			}
		})
	}
}

func TestRunLinuxCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{fn: func(ctx context.Context, _ shell.Command) (shell.Result, error) {
		cancel()
		<-ctx.Done()
		return shell.Result{}, ctx.Err()
	}}
	e := newTestElevator(t, Config{GOOS: "linux", Stat: statOnly("/usr/bin/pkexec"), Runner: runner})

	_, err := e.Exec(ctx, "sleep 10", Options{Name: "Test"})
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Exec() error = %v, want ErrCancelled", err)
	}
}

// fakeTool writes a stand-in for pkexec: grant runs the wrapped command,
// otherwise it fails the way pkexec does when the dialog is dismissed.
func fakeTool(t *testing.T, grant bool) string {
	t.Helper()

	body := "#!/bin/sh\nshift\nexec \"$@\"\n"
	if !grant {
		body = "#!/bin/sh\necho 'Error executing command as another user: Request dismissed' >&2\nexit 126\n"
	}
	path := filepath.Join(t.TempDir(), "pkexec")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunLinuxEndToEnd(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("/bin/bash"); err != nil {
		t.Skip("needs /bin/bash")
	}
	t.Parallel()

	t.Run("granted", func(t *testing.T) {
		t.Parallel()

		e := newTestElevator(t, Config{
			GOOS:       "linux",
			WorkDir:    t.TempDir(),
			LinuxTools: []string{fakeTool(t, true)},
		})
		res, err := e.Exec(context.Background(), "echo hello; printenv GREETING >&2", Options{
			Name: "Test",
			Env:  map[string]string{"GREETING": `hi "there" $USER`},
		})
		if err != nil {
			t.Fatalf("Exec() error = %v", err)
		}
		if res.Stdout != "hello\n" {
			t.Errorf("stdout = %q, want %q", res.Stdout, "hello\n")
		}
		if res.Stderr != "hi \"there\" $USER\n" {
			t.Errorf("stderr = %q", res.Stderr)
		}
	})

	t.Run("command fails", func(t *testing.T) {
		t.Parallel()

		e := newTestElevator(t, Config{GOOS: "linux", WorkDir: t.TempDir(), LinuxTools: []string{fakeTool(t, true)}})
		_, err := e.Exec(context.Background(), "echo boom >&2; exit 3", Options{Name: "Test"})
		var failed *CommandFailedError
		if !errors.As(err, &failed) {
			t.Fatalf("Exec() error = %v, want *CommandFailedError", err)
		}
		if failed.ExitCode != 3 || failed.Stderr != "boom\n" {
			t.Errorf("failure = %+v", failed)
		}
	})

	t.Run("denied", func(t *testing.T) {
		t.Parallel()

		e := newTestElevator(t, Config{GOOS: "linux", WorkDir: t.TempDir(), LinuxTools: []string{fakeTool(t, false)}})
		_, err := e.Exec(context.Background(), "echo hello", Options{Name: "Test"})
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("Exec() error = %v, want ErrPermissionDenied", err)
		}
	})
}
