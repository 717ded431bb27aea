package kwcrypto

import (
	"crypto/rand"
	"fmt"
)

// RandomBytes returns n cryptographically secure random bytes. It backs
// keypair generation, NaCl nonces, Shamir blinding factors, and ephemeral
// passwords. crypto/rand is used directly: it is the canonical OS entropy
// source and every other primitive in this package (go-ethereum's signing,
// golang.org/x/crypto's scrypt and nacl/box) already reads from it
// internally, so wrapping it in a third-party library would add a layer
// without adding capability.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("kwcrypto: reading random bytes: %w", err)
	}
	return b, nil
}
