package privilege

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/caarlos0/log"
	"github.com/zcf0508/sudo-prompt/internal/shell"
)

// fakeRunner records every command and answers with fn.
type fakeRunner struct {
	mu    sync.Mutex
	calls []shell.Command
	fn    func(ctx context.Context, c shell.Command) (shell.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, c shell.Command) (shell.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	if f.fn == nil {
		return shell.Result{}, nil
	}
	return f.fn(ctx, c)
}

func (f *fakeRunner) commands() []shell.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shell.Command(nil), f.calls...)
}

var _ shell.Runner = (*fakeRunner)(nil)

type launcherFunc func(ctx context.Context, script, dir string) error

func (f launcherFunc) Launch(ctx context.Context, script, dir string) error {
	return f(ctx, script, dir)
}

func newTestElevator(t *testing.T, cfg Config) *Elevator {
	t.Helper()

	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.TempDir == "" {
		cfg.TempDir = t.TempDir()
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "/home/user/project"
	}
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

// assertEmptyDir fails if any workspace was left behind in dir.
func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("workspace left behind in %s: %v", dir, names)
	}
}

type zipEntry struct {
	name string
	body string
	mode fs.FileMode
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		h := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		h.SetMode(mode)
		f, err := w.CreateHeader(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// testApplet mimics the layout of the prebuilt applet bundle.
func testApplet(t *testing.T) AppletBytes {
	t.Helper()

	return buildZip(t,
		zipEntry{name: "Contents/", mode: fs.ModeDir | 0o755},
		zipEntry{name: "Contents/Info.plist", body: "<plist/>"},
		zipEntry{name: "Contents/MacOS/", mode: fs.ModeDir | 0o755},
		zipEntry{name: "Contents/MacOS/applet", body: "#!/bin/sh\n", mode: 0o755},
		zipEntry{name: "Contents/Resources/applet.icns", body: "default icon"},
	)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
