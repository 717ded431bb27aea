package signer

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/idos-network/idos-sdk-go/kwcrypto"
	"github.com/idos-network/idos-sdk-go/types"
)

// Secp256k1PersonalSigner signs with a secp256k1 key under the EIP-191
// personal-sign scheme. It doubles as a TypedDataSigner via SignTypedData for
// callers (e.g. the distributed-recovery client) that need the same key to
// produce typed-data signatures.
type Secp256k1PersonalSigner struct {
	priv *ecdsa.PrivateKey
}

// NewSecp256k1PersonalSigner builds a signer from a hex-encoded secp256k1
// private key (with or without a "0x" prefix).
func NewSecp256k1PersonalSigner(privateKeyHex string) (*Secp256k1PersonalSigner, error) {
	keyHex := strings.TrimPrefix(strings.TrimPrefix(privateKeyHex, "0x"), "0X")
	priv, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("signer: invalid secp256k1 private key: %w", err)
	}
	return &Secp256k1PersonalSigner{priv: priv}, nil
}

func (s *Secp256k1PersonalSigner) GetIdentifier() []byte {
	return kwcrypto.CompressedPublicKey(s.priv)
}

func (s *Secp256k1PersonalSigner) GetSignatureType() SignatureType {
	return Secp256k1EP
}

func (s *Secp256k1PersonalSigner) Sign(msg []byte) ([]byte, error) {
	return kwcrypto.SignPersonal(msg, s.priv)
}

// SignTypedData signs an EIP-712 typed-data structure and returns a
// 0x-prefixed hex signature, satisfying TypedDataSigner.
func (s *Secp256k1PersonalSigner) SignTypedData(td TypedData) (string, error) {
	digest, err := td.Hash()
	if err != nil {
		return "", fmt.Errorf("signer: hashing typed data: %w", err)
	}
	sig, err := kwcrypto.SignDigest(digest, s.priv)
	if err != nil {
		return "", fmt.Errorf("signer: signing typed data: %w", err)
	}
	return "0x" + types.EncodeHex(sig), nil
}
