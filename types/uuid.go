package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateUUID returns an error unless s is a canonical 8-4-4-4-12 hex UUID
// string. It is used both for user ids and, per the enclave's key
// derivation contract, for the scrypt salt (which must itself be a valid
// UUID).
func ValidateUUID(s string) error {
	// uuid.Parse also accepts braced, urn:uuid: and bare 32-digit forms;
	// only the 36-character hyphenated form is canonical.
	if len(s) != 36 {
		return fmt.Errorf("types: invalid uuid %q: not in canonical 8-4-4-4-12 form", s)
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("types: invalid uuid %q: %w", s, err)
	}
	return nil
}

// UUIDBytes parses a canonical UUID string into its 16 raw bytes, for use as
// a fixed-width wire value.
func UUIDBytes(s string) ([16]byte, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return [16]byte{}, fmt.Errorf("types: invalid uuid %q: %w", s, err)
	}
	return u, nil
}

// UUIDFromBytes renders 16 raw bytes back into canonical UUID string form.
func UUIDFromBytes(b [16]byte) string {
	return uuid.UUID(b).String()
}

// NewUUID generates a fresh random (v4) UUID string.
func NewUUID() string {
	return uuid.New().String()
}
