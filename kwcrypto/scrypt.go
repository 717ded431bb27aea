// Package kwcrypto composes the standard cryptographic primitives the SDK
// needs -- scrypt, keccak-256, SHA-256, NaCl box, Curve25519, and
// secp256k1 -- behind a small set of named functions. It introduces no
// new primitive; it only wires the ones the SDK needs.
package kwcrypto

import (
	"fmt"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/idos-network/idos-sdk-go/types"
)

// Scrypt parameters mandated by the enclave key-derivation contract.
const (
	ScryptN     = 16384
	ScryptR     = 8
	ScryptP     = 1
	ScryptDKLen = 32
)

// DeriveScryptKey derives a 32-byte secret key from a password and a user id.
// The password is normalized to Unicode Normalization Form KC before being
// turned into UTF-8 bytes, so that two passwords that render identically but
// differ in combining-character composition derive the same key. The salt
// is the UTF-8 bytes of the user id, which MUST itself validate as a UUID.
func DeriveScryptKey(password, userID string) ([]byte, error) {
	if err := types.ValidateUUID(userID); err != nil {
		return nil, fmt.Errorf("kwcrypto: scrypt salt must be a uuid: %w", err)
	}

	normalized := norm.NFKC.String(password)
	if !norm.NFKC.IsNormalString(normalized) {
		// norm.NFKC.String should always return a normalized string; this is
		// a fail-closed belt-and-braces check against a normalization bug.
		return nil, fmt.Errorf("kwcrypto: password failed to normalize to NFKC")
	}

	key, err := scrypt.Key([]byte(normalized), []byte(userID), ScryptN, ScryptR, ScryptP, ScryptDKLen)
	if err != nil {
		return nil, fmt.Errorf("kwcrypto: scrypt derivation failed: %w", err)
	}
	return key, nil
}
