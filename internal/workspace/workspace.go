// Package workspace manages the temporary directory that holds the scripts
// and result files of a single elevated invocation.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zcf0508/sudo-prompt/internal/identifier"
)

var ErrUnsafePath = errors.New("refusing to remove workspace")

// Workspace is a directory named after an invocation identifier. Remove
// deletes it at most once no matter how many times it is called.
type Workspace struct {
	path string

	once      sync.Once
	removeErr error
}

// Create makes a fresh directory named id under root. It fails if the
// directory already exists, so a path planted by another process is never
// adopted.
func Create(root, id string) (*Workspace, error) {
	if err := identifier.Validate(id); err != nil {
		return nil, err
	}
	if root == "" {
		return nil, errors.New("temp root is empty")
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temp root: %w", err)
	}

	path := filepath.Join(root, id)
	if err := os.Mkdir(path, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{path: path}, nil
}

// Path returns the absolute workspace directory.
func (w *Workspace) Path() string { return w.path }

// Join returns a path inside the workspace.
func (w *Workspace) Join(elem ...string) string {
	return filepath.Join(append([]string{w.path}, elem...)...)
}

// Remove deletes the workspace recursively. Only the first call does any
// work; later calls return the first result.
func (w *Workspace) Remove() error {
	w.once.Do(func() {
		w.removeErr = Remove(w.path)
	})
	return w.removeErr
}

// Remove forcibly deletes a workspace directory. The last element of path must
// be a well-formed identifier. A path that no longer exists is not an error.
func Remove(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path is empty", ErrUnsafePath)
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q is not absolute", ErrUnsafePath, path)
	}
	clean := filepath.Clean(path)
	if err := identifier.Validate(filepath.Base(clean)); err != nil {
		return fmt.Errorf("%w: %q is not a workspace: %v", ErrUnsafePath, path, err)
	}

	if err := os.RemoveAll(clean); err != nil {
		return fmt.Errorf("failed to remove workspace %q: %w", clean, err)
	}
	return nil
}
