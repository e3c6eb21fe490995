// Package wallet keeps the named accounts tokendash can read for and sign
// with. Metadata lives in wallets.json; private keys live in the OS keychain.
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrWatchOnly      = errors.New("wallet is watch-only and cannot sign")
)

// Wallet holds metadata for a single account.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Type      string `json:"type"`
	KeyRef    string `json:"key_ref,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Addr returns the wallet address as a go-ethereum address.
func (w *Wallet) Addr() common.Address { return common.HexToAddress(w.Address) }

// CanSign reports whether a private key is held for the wallet.
func (w *Wallet) CanSign() bool { return w.Type == TypeSigning }

// Store is an interface for persisting wallets.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD.
type Manager struct {
	store   Store
	keys    KeystoreBackend
	wallets map[string]*Wallet
	loaded  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory store and keystore (useful for tests).
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
		m.keys = NewInMemoryKeystore()
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeystore sets where private keys are kept.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) {
		m.keys = ks
	}
}

// NewManager creates a new wallet manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets: make(map[string]*Wallet),
		store:   &memStore{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.keys == nil {
		m.keys = NewInMemoryKeystore()
	}
	return m
}

// Keystore returns the backend holding private keys.
func (m *Manager) Keystore() KeystoreBackend { return m.keys }

// AddWatchOnly registers an address that can be read but not signed for.
func (m *Manager) AddWatchOnly(name, address string) error {
	if !validate.IsAddress(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return m.Add(name, &Wallet{
		Name:    name,
		Address: common.HexToAddress(address).Hex(),
		Type:    TypeWatchOnly,
	})
}

// Add registers a pre-built wallet.
func (m *Manager) Add(name string, w *Wallet) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}
	if w.CreatedAt == "" {
		w.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	w.Name = name
	m.wallets[name] = w
	return m.persist()
}

// AddWithKey derives the address from a hex private key, stores the key in
// the keystore and records the wallet.
func (m *Manager) AddWithKey(name, hexKey string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}

	address, err := KeyAddress(hexKey)
	if err != nil {
		return err
	}

	ref, err := m.keys.Store(name, hexKey)
	if err != nil {
		return fmt.Errorf("storing key: %w", err)
	}

	m.wallets[name] = &Wallet{
		Name:      name,
		Address:   address,
		Type:      TypeSigning,
		KeyRef:    ref,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return m.persist()
}

// KeyAddress returns the checksummed address of a hex private key.
func KeyAddress(hexKey string) (string, error) {
	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return crypto.PubkeyToAddress(privKey.PublicKey).Hex(), nil
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return w, nil
}

// Remove deletes a wallet and its stored key.
func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	w, ok := m.wallets[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	if w.KeyRef != "" {
		if err := m.keys.Delete(w.KeyRef); err != nil {
			return err
		}
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets sorted by name.
func (m *Manager) List() []*Wallet {
	m.load() //nolint:errcheck
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the default wallet, or nil if none.
func (m *Manager) Default() *Wallet {
	m.load() //nolint:errcheck
	for _, w := range m.wallets {
		if w.IsDefault {
			return w
		}
	}
	// A single wallet is the default by elimination.
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w
		}
	}
	return nil
}

// Resolve returns the named wallet, or the default one when name is empty.
func (m *Manager) Resolve(name string) (*Wallet, error) {
	if name != "" {
		return m.Get(name)
	}
	if w := m.Default(); w != nil {
		return w, nil
	}
	return nil, fmt.Errorf("%w: no default wallet set (run 'tokendash wallet add')", ErrWalletNotFound)
}

// Signer returns a transaction signer for the named wallet.
func (m *Manager) Signer(name string) (*Signer, error) {
	w, err := m.Resolve(name)
	if err != nil {
		return nil, err
	}
	return NewSigner(w, m.keys)
}

// --- internal ---

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	return m.store.Save(m.List())
}

// --- in-memory store ---

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// --- JSON file store ---

// JSONStore persists wallets to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed wallet store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return wallets, nil
}

func (s *JSONStore) Save(wallets []*Wallet) error {
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
