package enclave

import (
	"fmt"
	"time"

	"github.com/idos-network/idos-sdk-go/kwcrypto"
	"github.com/idos-network/idos-sdk-go/types"
)

// Enclave derives, holds, and retires one kind of secret key, and
// performs NaCl box seal/open under it. It has no concept of "locked" or
// "unlocked" -- that lifecycle lives one layer up, in the orchestrator;
// an Enclave simply has or lacks a valid key at any moment.
type Enclave struct {
	kind     Kind
	secrets  SecretStore
	metadata MetadataStore
	now      func() time.Time
}

// New builds an Enclave for kind, backed by the given stores.
func New(kind Kind, secrets SecretStore, metadata MetadataStore) *Enclave {
	return &Enclave{kind: kind, secrets: secrets, metadata: metadata, now: time.Now}
}

// GenerateKey derives a secret key from password and userID via scrypt,
// persists it to secure storage, and returns the corresponding
// Curve25519 public key. expiration sets a "timed" expiration policy
// relative to the moment of generation.
func (e *Enclave) GenerateKey(userID, password string, expiration time.Duration) ([]byte, error) {
	secret, err := kwcrypto.DeriveScryptKey(password, userID)
	if err != nil {
		return nil, &KeyGenerationFailed{Details: err.Error()}
	}
	defer kwcrypto.ZeroBytes(secret)

	var secretArr [32]byte
	copy(secretArr[:], secret)
	defer kwcrypto.ZeroArray32(&secretArr)

	pub := kwcrypto.DeriveCurve25519PublicKey(&secretArr)

	if err := e.secrets.Put(e.kind, secret); err != nil {
		return nil, &StorageFailed{Details: err.Error()}
	}

	now := e.now().UnixMilli()
	expiresAt := now + expiration.Milliseconds()
	meta := KeyMetadata{
		UserID:         userID,
		PublicKey:      types.EncodeHex(pub[:]),
		Type:           e.kind,
		ExpirationType: ExpirationTimed,
		ExpiresAt:      &expiresAt,
		CreatedAt:      now,
		LastUsedAt:     now,
	}
	if err := e.metadata.Put(e.kind, meta); err != nil {
		_ = e.secrets.Delete(e.kind)
		return nil, &StorageFailed{Details: err.Error()}
	}

	return pub[:], nil
}

// DeleteKey erases the secret and metadata slots idempotently.
func (e *Enclave) DeleteKey() error {
	if err := e.secrets.Delete(e.kind); err != nil {
		return &StorageFailed{Details: err.Error()}
	}
	if err := e.metadata.Delete(e.kind); err != nil {
		return &StorageFailed{Details: err.Error()}
	}
	return nil
}

// HasValidKey reports whether the stored key is present and not expired.
// An expired key's storage is purged as a side effect.
func (e *Enclave) HasValidKey() error {
	_, err := e.checkValid()
	return err
}

// Encrypt seals msg to recvPub under the enclave's own secret key,
// returning nonce||ciphertext and the enclave's own public key.
func (e *Enclave) Encrypt(msg []byte, recvPub []byte) (sealed []byte, ownPub []byte, err error) {
	meta, err := e.checkValid()
	if err != nil {
		return nil, nil, err
	}
	if len(recvPub) != 32 {
		return nil, nil, &InvalidPublicKey{Details: fmt.Sprintf("expected 32 bytes, got %d", len(recvPub))}
	}

	secret, err := e.loadSecretArray()
	if err != nil {
		return nil, nil, err
	}
	defer kwcrypto.ZeroArray32(secret)

	var recvArr [32]byte
	copy(recvArr[:], recvPub)

	sealed, err = kwcrypto.BoxSeal(msg, &recvArr, secret)
	if err != nil {
		return nil, nil, &EncryptionFailed{Details: err.Error()}
	}

	ownPubBytes, err := types.DecodeHex(meta.PublicKey)
	if err != nil {
		return nil, nil, &Unknown{Details: "stored public key is not valid hex", Cause: err}
	}

	if err := e.touch(meta); err != nil {
		return nil, nil, err
	}

	return sealed, ownPubBytes, nil
}

// Decrypt opens a nonce||ciphertext sealed by senderPub's holder to the
// enclave's own public key.
func (e *Enclave) Decrypt(sealedWithNonce []byte, senderPub []byte) ([]byte, error) {
	meta, err := e.checkValid()
	if err != nil {
		return nil, err
	}
	if len(senderPub) != 32 {
		return nil, &InvalidPublicKey{Details: fmt.Sprintf("expected 32 bytes, got %d", len(senderPub))}
	}

	secret, err := e.loadSecretArray()
	if err != nil {
		return nil, err
	}
	defer kwcrypto.ZeroArray32(secret)

	var senderArr [32]byte
	copy(senderArr[:], senderPub)

	plaintext, err := kwcrypto.BoxOpen(sealedWithNonce, &senderArr, secret)
	if err != nil {
		// The key is present and unexpired (checkValid just confirmed
		// it), so this is classified as WrongPassword -- the primitive
		// itself cannot distinguish wrong key from corrupted ciphertext.
		return nil, &DecryptionFailed{Reason: ReasonWrongPassword, Details: err.Error()}
	}

	if err := e.touch(meta); err != nil {
		return nil, err
	}

	return plaintext, nil
}

// checkValid loads metadata and enforces its expiration policy, purging
// storage and returning NoKey/KeyExpired when invalid.
func (e *Enclave) checkValid() (*KeyMetadata, error) {
	meta, err := e.metadata.Get(e.kind)
	if err != nil {
		return nil, &StorageFailed{Details: err.Error()}
	}
	if meta == nil {
		return nil, &NoKey{}
	}
	if e.isExpired(meta) {
		_ = e.secrets.Delete(e.kind)
		_ = e.metadata.Delete(e.kind)
		return nil, &KeyExpired{}
	}
	return meta, nil
}

func (e *Enclave) isExpired(meta *KeyMetadata) bool {
	switch meta.ExpirationType {
	case ExpirationTimed:
		return meta.ExpiresAt != nil && e.now().UnixMilli() > *meta.ExpiresAt
	case ExpirationOneShot:
		return meta.UsedOnce
	case ExpirationSession:
		return false
	default:
		return true
	}
}

// touch records a successful use: updates LastUsedAt, and for a
// one_shot key marks it consumed so the next check invalidates it.
func (e *Enclave) touch(meta *KeyMetadata) error {
	updated := *meta
	updated.LastUsedAt = e.now().UnixMilli()
	if updated.ExpirationType == ExpirationOneShot {
		updated.UsedOnce = true
	}
	if err := e.metadata.Put(e.kind, updated); err != nil {
		return &StorageFailed{Details: err.Error()}
	}
	return nil
}

func (e *Enclave) loadSecretArray() (*[32]byte, error) {
	secret, err := e.secrets.Get(e.kind)
	if err != nil {
		return nil, &StorageFailed{Details: err.Error()}
	}
	if secret == nil {
		return nil, &NoKey{}
	}
	defer kwcrypto.ZeroBytes(secret)
	var arr [32]byte
	copy(arr[:], secret)
	return &arr, nil
}
