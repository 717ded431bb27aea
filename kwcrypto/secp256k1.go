package kwcrypto

import (
	"crypto/ecdsa"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// PersonalSignHash computes the EIP-191 "personal_sign" digest:
// keccak256("\x19Ethereum Signed Message:\n" || len(msg) || msg).
func PersonalSignHash(msg []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))
	return Keccak256([]byte(prefix), msg)
}

// SignPersonal signs msg under the EIP-191 personal-sign scheme and returns
// the 65-byte r||s||v signature with v normalized to {27,28}.
func SignPersonal(msg []byte, priv *ecdsa.PrivateKey) ([]byte, error) {
	digest := PersonalSignHash(msg)
	sig, err := ethcrypto.Sign(digest, priv)
	if err != nil {
		return nil, fmt.Errorf("kwcrypto: secp256k1 sign: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

// SignDigest signs a pre-computed 32-byte digest directly, without the
// EIP-191 prefix. EIP-712 typed-data signatures use this entry point over
// the "\x19\x01" domain-separated digest instead of PersonalSignHash.
func SignDigest(digest []byte, priv *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := ethcrypto.Sign(digest, priv)
	if err != nil {
		return nil, fmt.Errorf("kwcrypto: secp256k1 sign digest: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

// CompressedPublicKey returns the 33-byte SEC1-compressed public key, used
// as the secp256k1 signer's wire identifier.
func CompressedPublicKey(priv *ecdsa.PrivateKey) []byte {
	return ethcrypto.CompressPubkey(&priv.PublicKey)
}

// RecoverPersonal recovers the compressed public key that produced sig over
// msg under the EIP-191 personal-sign scheme. sig's trailing recovery byte
// may be in either {0,1} or {27,28} form.
func RecoverPersonal(msg, sig []byte) ([]byte, error) {
	if len(sig) != 65 {
		return nil, fmt.Errorf("kwcrypto: signature must be 65 bytes, got %d", len(sig))
	}
	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	digest := PersonalSignHash(msg)
	pub, err := ethcrypto.SigToPub(digest, normalized)
	if err != nil {
		return nil, fmt.Errorf("kwcrypto: recovering public key: %w", err)
	}
	return ethcrypto.CompressPubkey(pub), nil
}
