// Package marker holds the two pieces of data that every keyed operation in
// this module derives from: the per-request MarkerId and the process-wide
// Secret (spec.md §3).
package marker

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmpty is returned when a MarkerId is empty.
var ErrEmpty = errors.New("marker: id must not be empty")

// MarkerId is an opaque per-request identifier, typically a UUID. It carries
// no secret: distinct identifiers yield distinct keyed-RNG sequences for the
// same Secret.
type MarkerId string

// New validates and wraps a raw marker id. It does not require the value to
// be a UUID — spec.md §3 only requires non-empty opaque text.
func New(id string) (MarkerId, error) {
	if id == "" {
		return "", ErrEmpty
	}
	return MarkerId(id), nil
}

// NewRandom mints a fresh random MarkerId backed by a UUIDv4, for callers
// (demos, tests) that don't have a request-scoped id yet.
func NewRandom() MarkerId {
	return MarkerId(uuid.NewString())
}

func (m MarkerId) String() string {
	return string(m)
}

// Secret is the process-wide byte string loaded once at startup (spec.md §3).
// It is immutable after Load and carries no accessors that allow mutation.
type Secret struct {
	bytes []byte
}

// ErrUninitialized is returned by keyed operations when no secret has been
// loaded (spec.md §7 Uninitialized).
var ErrUninitialized = errors.New("marker: secret not initialized")

// Load captures a secret value once, at process start. The byte slice is
// copied so later mutation of the caller's slice cannot affect the Secret.
func Load(raw []byte) (Secret, error) {
	if len(raw) == 0 {
		return Secret{}, fmt.Errorf("marker: %w: secret must not be empty", ErrUninitialized)
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Secret{bytes: cp}, nil
}

// LoadString is a convenience wrapper around Load for string secrets (e.g.
// read from an environment variable by the host).
func LoadString(raw string) (Secret, error) {
	return Load([]byte(raw))
}

// IsZero reports whether the secret has never been loaded.
func (s Secret) IsZero() bool {
	return len(s.bytes) == 0
}

// Bytes returns the raw secret bytes. Intended for rng.For only.
func (s Secret) Bytes() []byte {
	return s.bytes
}
