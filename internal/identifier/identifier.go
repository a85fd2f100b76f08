// Package identifier derives the unpredictable names of per-invocation
// workspaces.
package identifier

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"regexp"
	"strconv"
	"time"
)

const (
	// Length is the number of hex characters of an identifier.
	Length = 32
	// EntropySize is the number of random bytes mixed into every identifier.
	EntropySize = 256

	salt = "sudo-prompt-3"
)

var (
	ErrInvalidIdentifier = errors.New("identifier must be exactly 32 lowercase hex characters")

	idRe = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

// ID is a workspace identifier.
type ID struct {
	Value string
	// Degraded is set when the entropy source failed and the identifier was
	// seeded from the clock and a pseudo-random number instead.
	Degraded bool
}

func (id ID) String() string { return id.Value }

// Generator produces identifiers from an entropy source.
type Generator struct {
	// Entropy defaults to crypto/rand.Reader.
	Entropy io.Reader
	// Now is only overridden in tests.
	Now func() time.Time
}

// New hashes EntropySize random bytes together with name and command and
// keeps the last Length hex characters of the digest.
func (g Generator) New(name, command string) (ID, error) {
	entropy := g.Entropy
	if entropy == nil {
		entropy = rand.Reader
	}
	now := g.Now
	if now == nil {
		now = time.Now
	}

	var id ID
	random := make([]byte, EntropySize)
	if _, err := io.ReadFull(entropy, random); err != nil {
		id.Degraded = true
		random = []byte(strconv.FormatInt(now().UnixNano(), 10) + strconv.FormatInt(mrand.Int64(), 10))
	}

	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte(name))
	h.Write([]byte(command))
	h.Write(random)
	digest := hex.EncodeToString(h.Sum(nil))

	id.Value = digest[len(digest)-Length:]
	if err := Validate(id.Value); err != nil {
		return ID{}, err
	}
	return id, nil
}

// New generates an identifier from crypto/rand.
func New(name, command string) (ID, error) {
	return Generator{}.New(name, command)
}

// Validate reports whether s is a well-formed identifier. Cleanup code must
// never act on a path derived from anything else.
func Validate(s string) error {
	if !idRe.MatchString(s) {
		return fmt.Errorf("%w: got %q", ErrInvalidIdentifier, s)
	}
	return nil
}
