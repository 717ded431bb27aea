package kwcrypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

// NonceSize is the length in bytes of a NaCl box nonce.
const NonceSize = 24

// BoxSeal authenticates and encrypts msg to recvPub using sendSec, the NaCl
// "box" construction (Curve25519 + XSalsa20-Poly1305). A fresh random nonce
// is generated for every call and prepended to the returned ciphertext:
// nonce(24) || ciphertext_with_mac.
func BoxSeal(msg []byte, recvPub, sendSec *[32]byte) ([]byte, error) {
	nonceBytes, err := RandomBytes(NonceSize)
	if err != nil {
		return nil, fmt.Errorf("kwcrypto: generating seal nonce: %w", err)
	}
	var nonce [NonceSize]byte
	copy(nonce[:], nonceBytes)

	out := make([]byte, 0, NonceSize+len(msg)+box.Overhead)
	out = append(out, nonce[:]...)
	out = box.Seal(out, msg, &nonce, recvPub, sendSec)
	return out, nil
}

// BoxOpen decrypts and authenticates a nonce-prefixed ciphertext produced by
// BoxSeal (or a compatible peer), returning the plaintext. It fails if the
// input is too short to contain a nonce, or if the box fails to
// authenticate -- the two cases are indistinguishable at this layer; the
// enclave classifies the failure for the caller.
func BoxOpen(sealed []byte, sendPub, recvSec *[32]byte) ([]byte, error) {
	if len(sealed) < NonceSize {
		return nil, fmt.Errorf("kwcrypto: sealed input shorter than nonce")
	}
	var nonce [NonceSize]byte
	copy(nonce[:], sealed[:NonceSize])

	plain, ok := box.Open(nil, sealed[NonceSize:], &nonce, sendPub, recvSec)
	if !ok {
		return nil, fmt.Errorf("kwcrypto: box authentication failed")
	}
	return plain, nil
}

// GenerateBoxKeypair generates a fresh Curve25519 keypair suitable for NaCl
// box, used for distributed-recovery download's per-request ephemeral key.
func GenerateBoxKeypair() (pub, sec *[32]byte, err error) {
	pub, sec, err = box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("kwcrypto: generating box keypair: %w", err)
	}
	return pub, sec, nil
}
