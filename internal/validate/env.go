package validate

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidEnv = errors.New("env must be a non-empty map with string keys and values")

	envKeyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ValidateEnv checks the environment overrides of an invocation. A nil map
// means no overrides; a non-nil map must not be empty. Keys are spliced into
// "export" and "set" statements unquoted, so they must be plain identifiers.
func ValidateEnv(env map[string]string) error {
	if env == nil {
		return nil
	}
	if len(env) == 0 {
		return fmt.Errorf("%w: map is empty", ErrInvalidEnv)
	}
	for _, key := range SortedKeys(env) {
		value := env[key]
		if !envKeyRe.MatchString(key) {
			return fmt.Errorf("%w: invalid key %q", ErrInvalidEnv, key)
		}
		if !utf8.ValidString(value) || strings.ContainsRune(value, 0) {
			return fmt.Errorf("%w: value of %s is not text", ErrInvalidEnv, key)
		}
	}
	return nil
}

// SortedKeys returns the keys of env in lexical order, so generated scripts
// are deterministic.
func SortedKeys(env map[string]string) []string {
	return slices.Sorted(maps.Keys(env))
}
