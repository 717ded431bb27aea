// Package signer defines the opaque "signs bytes" abstraction the rest of
// the SDK programs against, and the three concrete schemes the network
// recognizes: secp256k1 personal-sign (EIP-191), EIP-712 typed data, and
// Ed25519.
package signer

// SignatureType is the closed set of signature schemes the network
// recognizes on the wire.
type SignatureType string

const (
	Secp256k1EP SignatureType = "secp256k1_ep"
	EIP712      SignatureType = "eth_personal_sign_eip712"
	Ed25519Sig  SignatureType = "ed25519"
	Invalid     SignatureType = "invalid"
)

// Signer is the minimal contract the action executor, the protocol client's
// gateway authentication, and the distributed-recovery client all program
// against. Implementations must be safe for concurrent use; the executor
// and protocol client both hold a shared reference to one.
type Signer interface {
	// GetIdentifier returns the signer's public identifier in wire form
	// (e.g. a compressed secp256k1 public key, or an Ed25519 public key).
	GetIdentifier() []byte
	// GetSignatureType returns which of the closed signature-type set this
	// signer produces.
	GetSignatureType() SignatureType
	// Sign signs an arbitrary byte string and returns the raw signature
	// bytes in the format its signature type expects.
	Sign(msg []byte) ([]byte, error)
}

// TypedDataSigner is implemented by signers that can additionally produce
// EIP-712 typed-data signatures, required by the distributed-recovery
// client's per-request structured signatures.
type TypedDataSigner interface {
	Signer
	SignTypedData(td TypedData) (string, error)
}
