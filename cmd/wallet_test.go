package cmd

import (
	"testing"

	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/Mohsinsiddi/tokendash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat account #0.
const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestCheckWalletSecret(t *testing.T) {
	assert.NoError(t, checkWalletSecret(wallet.TypeWatchOnly, testRecipient))
	assert.NoError(t, checkWalletSecret(wallet.TypeSigning, testKey))

	err := checkWalletSecret(wallet.TypeWatchOnly, "0x123")
	require.Error(t, err)
	assert.Equal(t, "Invalid Ethereum address", err.Error())

	assert.ErrorIs(t, checkWalletSecret(wallet.TypeSigning, "0xnothex"), wallet.ErrInvalidKey)
}

func TestAddWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, err := addWallet(mgr, &ui.WalletInput{Name: "alice", Kind: wallet.TypeSigning, Secret: testKey})
	require.NoError(t, err)
	assert.True(t, w.CanSign())
	assert.Equal(t, testSelf, w.Address)

	w, err = addWallet(mgr, &ui.WalletInput{Name: "treasury", Kind: wallet.TypeWatchOnly, Secret: testRecipient})
	require.NoError(t, err)
	assert.False(t, w.CanSign())

	_, err = addWallet(mgr, &ui.WalletInput{Name: "alice", Kind: wallet.TypeWatchOnly, Secret: testRecipient})
	assert.Error(t, err, "duplicate name")
}

func TestResolveAddress(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWatchOnly("treasury", testRecipient))

	addr, err := resolveAddress(mgr, testSelf)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSelf), addr)

	addr, err = resolveAddress(mgr, "treasury")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testRecipient), addr)

	_, err = resolveAddress(mgr, "0x1234")
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)

	_, err = resolveAddress(mgr, "nobody")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestResolveOwner_FromArgs(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	addr, err := resolveOwner(mgr, []string{testRecipient})
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testRecipient), addr)
}

func TestWalletTypeLabel(t *testing.T) {
	assert.Equal(t, "Signing", walletTypeLabel(wallet.TypeSigning))
	assert.Equal(t, "Watch-only", walletTypeLabel(wallet.TypeWatchOnly))
}
