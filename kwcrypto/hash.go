package kwcrypto

import (
	"crypto/sha256"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Keccak256 hashes the concatenation of data with keccak-256, the hash
// function EIP-712 domain/struct hashing and the distributed-recovery share
// commitments are built on.
func Keccak256(data ...[]byte) []byte {
	return ethcrypto.Keccak256(data...)
}

// SHA256 hashes data with SHA-256. It is used for the transaction payload
// digest embedded in the canonical signable message. SHA-256 is taken
// straight from the standard library: no library in the example corpus
// wraps it with anything beyond what crypto/sha256 already provides, and
// go-ethereum itself calls crypto/sha256 directly for the same purpose.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// PayloadDigest returns the first 20 bytes of SHA-256(payload), the
// truncated digest embedded in the canonical signable message.
func PayloadDigest(payload []byte) []byte {
	d := SHA256(payload)
	return d[:20]
}
