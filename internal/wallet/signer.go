package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs EVM transactions for a signing wallet. The key is read from
// the keystore on each signature and never cached.
type Signer struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, ks KeystoreBackend) (*Signer, error) {
	if !w.CanSign() {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, w.Name)
	}
	return &Signer{wallet: w, ks: ks}, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return s.wallet.Addr()
}

// SignTx signs tx for chainID with the London signer.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	key, err := s.privateKey()
	if err != nil {
		return nil, err
	}
	if got := crypto.PubkeyToAddress(key.PublicKey); got != s.Address() {
		return nil, fmt.Errorf("stored key for %q belongs to %s, not %s", s.wallet.Name, got.Hex(), s.wallet.Address)
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

func (s *Signer) privateKey() (*ecdsa.PrivateKey, error) {
	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}
