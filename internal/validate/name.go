package validate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxNameLength bounds the display name. Staying well below the 255 byte
// filesystem limit side-steps Unicode normalization growing the name.
const MaxNameLength = 70

var (
	ErrInvalidName = errors.New("name must be alphanumeric only (spaces are allowed) and at most 70 characters")
	ErrInvalidIcon = errors.New("icon path must be a non-empty string")

	nameRe = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)
)

// ValidateName accepts display names made only of ASCII letters, digits and
// spaces, not blank, at most MaxNameLength characters long. Such names are
// embedded in paths, AppleScript dialogs and shell lines without escaping.
func ValidateName(name string) error {
	switch {
	case !nameRe.MatchString(name):
		return fmt.Errorf("%w: %q contains a character outside [A-Za-z0-9 ]", ErrInvalidName, name)
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is blank", ErrInvalidName)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: %d characters", ErrInvalidName, len(name))
	}
	return nil
}

// ValidateIcon checks an optional icon path. The empty string means no icon.
func ValidateIcon(path string) error {
	if path != "" && strings.TrimSpace(path) == "" {
		return ErrInvalidIcon
	}
	return nil
}

// DefaultName derives a valid display name from the running executable, for
// callers that did not provide one.
func DefaultName() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	base := strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte(' ')
		}
		if b.Len() == MaxNameLength {
			break
		}
	}

	name := strings.TrimSpace(b.String())
	if name == "" {
		return "sudo prompt"
	}
	return name
}
