package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const keychainService = "tokendash"

// EnvPrivateKey, when set, overrides every keystore lookup. Meant for CI
// and scripted use against test networks.
const EnvPrivateKey = "TOKENDASH_PRIVATE_KEY"

// EnvKeyringPassword unlocks the file backend without a terminal prompt.
const EnvKeyringPassword = "TOKENDASH_KEYRING_PASSWORD"

// ErrKeystoreUnavailable is returned when no keyring backend could be opened.
var ErrKeystoreUnavailable = errors.New("keystore not available")

// KeystoreBackend stores private keys by reference.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain. keyDir is
// used by the encrypted-file fallback.
func DefaultKeystore(keyDir string) *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  filepath.Join(keyDir, "keys"),
		FilePasswordFunc:         filePassword,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		ring, err = keyring.Open(cfg)
		if err != nil {
			return &Keystore{}
		}
	}
	return &Keystore{ring: ring}
}

func filePassword(prompt string) (string, error) {
	if pw := os.Getenv(EnvKeyringPassword); pw != "" {
		return pw, nil
	}
	return keyring.TerminalPrompt(prompt)
}

// Store saves a private key for a wallet name and returns a reference key.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	if k.ring == nil {
		return "", ErrKeystoreUnavailable
	}
	ref := keyRef(name)
	if err := k.ring.Set(keyring.Item{Key: ref, Data: []byte(normaliseHexKey(hexKey))}); err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a private key by its reference.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if v := os.Getenv(EnvPrivateKey); v != "" {
		return normaliseHexKey(v), nil
	}
	if k.ring == nil {
		return "", ErrKeystoreUnavailable
	}
	item, err := k.ring.Get(ref)
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored key. Missing keys are not an error.
func (k *Keystore) Delete(ref string) error {
	if k.ring == nil {
		return nil
	}
	if err := k.ring.Remove(ref); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// InMemoryKeystore stores keys in memory (for tests).
type InMemoryKeystore struct {
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	ref := keyRef(name)
	k.data[ref] = normaliseHexKey(hexKey)
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("key not found: %s", ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	delete(k.data, ref)
	return nil
}

func keyRef(name string) string { return keychainService + "." + name }

// normaliseHexKey trims whitespace and a 0x/0X prefix.
func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
