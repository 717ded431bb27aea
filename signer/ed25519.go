package signer

import (
	"crypto/ed25519"
	"fmt"
)

// Ed25519Signer signs with an Ed25519 keypair. Go's standard library
// implementation is used directly: golang.org/x/crypto/ed25519 has been a
// thin alias over crypto/ed25519 since Go 1.13, so importing it would add
// nothing the standard library doesn't already provide.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
}

// NewEd25519Signer wraps an existing Ed25519 private key.
func NewEd25519Signer(priv ed25519.PrivateKey) *Ed25519Signer {
	return &Ed25519Signer{priv: priv}
}

// GenerateEd25519Signer generates a fresh Ed25519 keypair and wraps it.
func GenerateEd25519Signer() (*Ed25519Signer, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("signer: generating ed25519 key: %w", err)
	}
	return &Ed25519Signer{priv: priv}, nil
}

func (s *Ed25519Signer) GetIdentifier() []byte {
	return []byte(s.priv.Public().(ed25519.PublicKey))
}

func (s *Ed25519Signer) GetSignatureType() SignatureType {
	return Ed25519Sig
}

func (s *Ed25519Signer) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, msg), nil
}
