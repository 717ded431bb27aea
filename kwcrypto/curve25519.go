package kwcrypto

import (
	"golang.org/x/crypto/curve25519"
)

// DeriveCurve25519PublicKey computes the Curve25519 public key corresponding
// to a 32-byte scalar secret key, the same base-point multiplication NaCl
// box keypairs are built from.
func DeriveCurve25519PublicKey(secret *[32]byte) [32]byte {
	var pub [32]byte
	curve25519.ScalarBaseMult(&pub, secret)
	return pub
}

// ZeroBytes overwrites b with zeros in place. Call this on secret and
// derived-key buffers as soon as they are no longer needed; Go's garbage
// collector gives no stronger guarantee than "eventually", so this is a
// best-effort reduction of the window during which key material sits in
// memory, not an airtight guarantee.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ZeroArray32 overwrites a fixed 32-byte array with zeros in place.
func ZeroArray32(b *[32]byte) {
	for i := range b {
		b[i] = 0
	}
}
