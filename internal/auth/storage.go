package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

// CredentialStore provides secure storage for OAuth credentials, keyed at
// (KeyringService, KeyringUsername) as a single JSON blob (spec.md §3).
type CredentialStore interface {
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	Delete() error
	Exists() bool
}

// KeyringStore implements CredentialStore against the OS keyring.
type KeyringStore struct{}

// NewKeyringStore returns a keyring-backed store. The zalando/go-keyring
// library selects the OS backend (Keychain, Secret Service, Credential
// Manager, or an encrypted file fallback) automatically.
func NewKeyringStore() (*KeyringStore, error) {
	return &KeyringStore{}, nil
}

// Load retrieves stored credentials from the keyring.
func (s *KeyringStore) Load() (*Credentials, error) {
	data, err := keyring.Get(KeyringService, KeyringUsername)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, fmt.Errorf("not logged in")
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

// Save stores credentials in the keyring as a single JSON document.
func (s *KeyringStore) Save(creds *Credentials) error {
	if creds == nil {
		return fmt.Errorf("cannot save nil credentials")
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := keyring.Set(KeyringService, KeyringUsername, string(data)); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Delete removes stored credentials. Idempotent: deleting when nothing is
// stored is not an error (spec.md §6, `ftl logout` exits 0 unconditionally).
func (s *KeyringStore) Delete() error {
	err := keyring.Delete(KeyringService, KeyringUsername)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// Exists reports whether credentials are currently stored.
func (s *KeyringStore) Exists() bool {
	_, err := keyring.Get(KeyringService, KeyringUsername)
	return err == nil
}

// MockStore is an in-memory CredentialStore for tests.
type MockStore struct {
	creds *Credentials
	err   error
}

// NewMockStore returns a mock store that serves creds or fails with err.
func NewMockStore(creds *Credentials, err error) *MockStore {
	return &MockStore{creds: creds, err: err}
}

func (m *MockStore) Load() (*Credentials, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.creds, nil
}

func (m *MockStore) Save(creds *Credentials) error {
	if m.err != nil {
		return m.err
	}
	m.creds = creds
	return nil
}

func (m *MockStore) Delete() error {
	if m.err != nil {
		return m.err
	}
	m.creds = nil
	return nil
}

func (m *MockStore) Exists() bool {
	return m.creds != nil
}
