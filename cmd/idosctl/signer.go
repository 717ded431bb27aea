package main

import (
	"crypto/ed25519"
	"fmt"

	"github.com/idos-network/idos-sdk-go/signer"
	"github.com/idos-network/idos-sdk-go/types"
)

// buildSigner resolves the configured signing key and constructs the
// scheme-appropriate Signer. Returns (nil, nil) if no key is configured,
// since call and view actions may run unauthenticated.
func buildSigner() (signer.Signer, error) {
	if cfg.Signer.PrivateKey == "" && cfg.Signer.EncryptedKeyPath == "" {
		return nil, nil
	}
	keyHex, err := cfg.Signer.ResolvePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("resolving signing key: %w", err)
	}

	switch cfg.Signer.Scheme {
	case "ed25519":
		raw, err := types.DecodeHex(keyHex)
		if err != nil {
			return nil, fmt.Errorf("decoding ed25519 key: %w", err)
		}
		return signer.NewEd25519Signer(ed25519.NewKeyFromSeed(raw)), nil
	case "secp256k1_ep":
		return signer.NewSecp256k1PersonalSigner(keyHex)
	default:
		return nil, fmt.Errorf("unknown signer scheme %q", cfg.Signer.Scheme)
	}
}
