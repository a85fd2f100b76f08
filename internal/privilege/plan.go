package privilege

import (
	"path/filepath"
)

// Plan is the platform-specific staging of one Invocation. Exactly one of
// LinuxPlan, MacPlan or WindowsPlan.
type Plan interface {
	invocation() Invocation
}

// LinuxPlan runs the command inline through a graphical elevation tool.
type LinuxPlan struct {
	Invocation
	// Tool is the absolute path of kdesudo or pkexec.
	Tool string
}

// MacPlan stages the applet bundle in a workspace.
type MacPlan struct {
	Invocation
	Workspace string
	// Bundle is <Workspace>/<name>.app.
	Bundle string
}

func (p MacPlan) contents(elem ...string) string {
	return filepath.Join(append([]string{p.Bundle, "Contents"}, elem...)...)
}

// InfoPlist is the property list patched with the display name.
func (p MacPlan) InfoPlist() string { return p.contents("Info.plist") }

// Icon is where a caller supplied icon is copied.
func (p MacPlan) Icon() string { return p.contents("Resources", "applet.icns") }

// MacOSDir holds the applet executable, the injected script and, after the
// run, the result files.
func (p MacPlan) MacOSDir() string { return p.contents("MacOS") }

// Script is the injected command script read by the applet.
func (p MacPlan) Script() string { return p.contents("MacOS", "sudo-prompt-command") }

// WindowsPlan stages batch scripts and result files in a workspace.
type WindowsPlan struct {
	Invocation
	Workspace string
	// CommandScript sets the environment and runs the command.
	CommandScript string
	// ExecuteScript is the script relaunched elevated. It calls CommandScript,
	// redirects its output and records the exit code in Status.
	ExecuteScript string
	Stdout        string
	Stderr        string
	Status        string
}

func (p LinuxPlan) invocation() Invocation   { return p.Invocation }
func (p MacPlan) invocation() Invocation     { return p.Invocation }
func (p WindowsPlan) invocation() Invocation { return p.Invocation }

func newMacPlan(inv Invocation, tempDir string) MacPlan {
	ws := filepath.Join(tempDir, inv.ID.Value)
	return MacPlan{
		Invocation: inv,
		Workspace:  ws,
		Bundle:     filepath.Join(ws, inv.Options.Name+".app"),
	}
}

func newWindowsPlan(inv Invocation, tempDir string) WindowsPlan {
	ws := filepath.Join(tempDir, inv.ID.Value)
	return WindowsPlan{
		Invocation:    inv,
		Workspace:     ws,
		CommandScript: filepath.Join(ws, "command.bat"),
		ExecuteScript: filepath.Join(ws, "execute.bat"),
		Stdout:        filepath.Join(ws, "stdout"),
		Stderr:        filepath.Join(ws, "stderr"),
		Status:        filepath.Join(ws, "status"),
	}
}
