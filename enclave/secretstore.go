package enclave

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/idos-network/idos-sdk-go/kwcrypto"
)

// SecretStore persists raw secret-key bytes, one slot per Kind. The
// secure-storage slot holds 32 bytes of raw secret material. It must
// never be logged, and working copies must be zeroed after use --
// callers of Get own the returned slice and MUST zero it themselves
// once done.
type SecretStore interface {
	Put(kind Kind, secret []byte) error
	Get(kind Kind) ([]byte, error) // nil, nil if absent
	Delete(kind Kind) error
}

// FileSecretStore persists each kind's secret as a file under a base
// directory, one file per kind, written atomically (temp file + rename)
// with owner-only permissions.
type FileSecretStore struct {
	baseDir string
	mu      sync.Mutex
}

// NewFileSecretStore creates a FileSecretStore rooted at baseDir, which
// is created with 0700 permissions if it doesn't already exist.
func NewFileSecretStore(baseDir string) (*FileSecretStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("enclave: creating secret store directory: %w", err)
	}
	return &FileSecretStore{baseDir: baseDir}, nil
}

func (s *FileSecretStore) path(kind Kind) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("secure_storage.%s.secret", kind))
}

func (s *FileSecretStore) Put(kind Kind, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(kind)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, secret, 0600); err != nil {
		return fmt.Errorf("enclave: writing secret: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("enclave: persisting secret: %w", err)
	}
	return nil
}

func (s *FileSecretStore) Get(kind Kind) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(kind))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("enclave: reading secret: %w", err)
	}
	return data, nil
}

func (s *FileSecretStore) Delete(kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(kind)
	if data, err := os.ReadFile(path); err == nil {
		kwcrypto.ZeroBytes(data)
	}
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("enclave: deleting secret: %w", err)
	}
	return nil
}

// InMemorySecretStore is a SecretStore backed by a process-local map, for
// tests and for hosts with no durable secure-storage facility available.
type InMemorySecretStore struct {
	mu      sync.Mutex
	secrets map[Kind][]byte
}

func NewInMemorySecretStore() *InMemorySecretStore {
	return &InMemorySecretStore{secrets: make(map[Kind][]byte)}
}

func (s *InMemorySecretStore) Put(kind Kind, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(secret))
	copy(cp, secret)
	s.secrets[kind] = cp
	return nil
}

func (s *InMemorySecretStore) Get(kind Kind) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.secrets[kind]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *InMemorySecretStore) Delete(kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.secrets[kind]; ok {
		kwcrypto.ZeroBytes(v)
		delete(s.secrets, kind)
	}
	return nil
}
