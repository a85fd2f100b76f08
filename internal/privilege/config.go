package privilege

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/log"
	"github.com/zcf0508/sudo-prompt/internal/identifier"
	"github.com/zcf0508/sudo-prompt/internal/shell"
	"github.com/zcf0508/sudo-prompt/internal/sliceutil"
)

const (
	DefaultPollInterval = time.Second
	DefaultTimeout      = 30 * time.Minute
)

// DefaultLinuxTools are probed in order. gksudo is not listed because it
// cannot run several commands concurrently.
var DefaultLinuxTools = []string{"/usr/bin/kdesudo", "/usr/bin/pkexec"}

// Config holds the process-boundary collaborators of an Elevator. Every field
// is optional.
type Config struct {
	Logger *log.Logger
	// GOOS selects the driver. Defaults to runtime.GOOS.
	GOOS string
	// TempDir is the root under which workspaces are created.
	TempDir string
	// WorkDir overrides the directory the elevated command starts in. When
	// empty, the caller's current directory is read on every call.
	WorkDir string
	Runner  shell.Runner
	// Identifiers names workspaces.
	Identifiers identifier.Generator
	// Applet is the prebuilt macOS applet archive.
	Applet AppletSource
	// Launcher relaunches the Windows execute script elevated. Defaults to
	// PowerShell Start-Process.
	Launcher Launcher
	// PollInterval is the delay between two checks of the Windows status file.
	PollInterval time.Duration
	// Timeout bounds the wait for the Windows status file.
	Timeout time.Duration
	// LinuxTools are the candidate elevation tools, probed in order. Blank and
	// duplicate entries are dropped.
	LinuxTools []string
	// Stat probes for the Linux tools and for the Windows result files.
	Stat func(name string) (fs.FileInfo, error)
	// WriteFile writes the scripts and icon staged in a workspace.
	WriteFile func(name string, data []byte, perm fs.FileMode) error
}

// CheckAndSetDefaults fills in unset fields.
func (c *Config) CheckAndSetDefaults() error {
	if c.Logger == nil {
		c.Logger = log.New(os.Stderr)
	}
	if c.GOOS == "" {
		c.GOOS = runtime.GOOS
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.TempDir == "" {
		return fmt.Errorf("temp directory not defined")
	}
	if c.Runner == nil {
		c.Runner = shell.NewExecRunner()
	}
	if c.Launcher == nil {
		c.Launcher = &PowerShellLauncher{Runner: c.Runner}
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.LinuxTools = sliceutil.Filter(c.LinuxTools, func(p string) (string, bool) {
		return path.Clean(p), strings.TrimSpace(p) != ""
	})
	if len(c.LinuxTools) == 0 {
		c.LinuxTools = DefaultLinuxTools
	}
	if c.Stat == nil {
		c.Stat = os.Stat
	}
	if c.WriteFile == nil {
		c.WriteFile = os.WriteFile
	}
	return nil
}
