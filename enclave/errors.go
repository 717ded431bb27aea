package enclave

import "fmt"

// NoKey is raised when an operation needs a key and none is stored (or
// storage was just purged because the stored key expired).
type NoKey struct{}

func (e *NoKey) Error() string { return "enclave: no key" }

// KeyExpired is raised when metadata exists but its expiration policy
// reports the key invalid. Storage is purged before this error returns.
type KeyExpired struct{}

func (e *KeyExpired) Error() string { return "enclave: key expired" }

// DecryptionFailureReason classifies why an open failed. WrongPassword is
// a policy classification, not a cryptographic fact: the NaCl box
// primitive cannot distinguish a wrong key from corrupted ciphertext.
type DecryptionFailureReason string

const (
	ReasonWrongPassword     DecryptionFailureReason = "wrong_password"
	ReasonCorruptedData     DecryptionFailureReason = "corrupted_data"
	ReasonInvalidCiphertext DecryptionFailureReason = "invalid_ciphertext"
	ReasonUnknown           DecryptionFailureReason = "unknown"
)

// DecryptionFailed is raised when Decrypt cannot recover a plaintext.
type DecryptionFailed struct {
	Reason  DecryptionFailureReason
	Details string
}

func (e *DecryptionFailed) Error() string {
	return fmt.Sprintf("enclave: decryption failed (%s): %s", e.Reason, e.Details)
}

// EncryptionFailed is raised when Encrypt cannot seal a message.
type EncryptionFailed struct {
	Details string
}

func (e *EncryptionFailed) Error() string { return fmt.Sprintf("enclave: encryption failed: %s", e.Details) }

// StorageFailed is raised when a SecretStore or MetadataStore operation
// fails for a reason unrelated to key validity.
type StorageFailed struct {
	Details string
}

func (e *StorageFailed) Error() string { return fmt.Sprintf("enclave: storage failed: %s", e.Details) }

// KeyGenerationFailed is raised when GenerateKey cannot derive or persist
// a new key.
type KeyGenerationFailed struct {
	Details string
}

func (e *KeyGenerationFailed) Error() string {
	return fmt.Sprintf("enclave: key generation failed: %s", e.Details)
}

// InvalidPublicKey is raised when a caller-supplied public key (the
// receiver key for Encrypt, or the sender key for Decrypt) is malformed.
type InvalidPublicKey struct {
	Details string
}

func (e *InvalidPublicKey) Error() string {
	return fmt.Sprintf("enclave: invalid public key: %s", e.Details)
}

// Unknown is the catch-all for enclave failures outside the named
// taxonomy.
type Unknown struct {
	Details string
	Cause   error
}

func (e *Unknown) Error() string { return fmt.Sprintf("enclave: %s", e.Details) }
func (e *Unknown) Unwrap() error { return e.Cause }
