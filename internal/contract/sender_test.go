package contract_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var sepolia = big.NewInt(11155111)

type keySigner struct{ key *ecdsa.PrivateKey }

func newKeySigner(t *testing.T) *keySigner {
	t.Helper()
	key, err := crypto.HexToECDSA(testPrivKeyHex)
	require.NoError(t, err)
	return &keySigner{key: key}
}

func (s *keySigner) Address() common.Address { return crypto.PubkeyToAddress(s.key.PublicKey) }

func (s *keySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.NewLondonSigner(chainID), s.key)
}

type fakeBackend struct {
	nonce       uint64
	gas         uint64
	estimateErr error
	gasPrice    *big.Int
	sendErr     error
	sent        []*types.Transaction
	receipt     *chain.TxReceipt
	receiptErr  error
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return f.gas, f.estimateErr
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) WaitForReceipt(_ context.Context, hash common.Hash, _ time.Duration) (*chain.TxReceipt, error) {
	if f.receipt != nil {
		f.receipt.Hash = hash
	}
	return f.receipt, f.receiptErr
}

func newBackend() *fakeBackend {
	return &fakeBackend{nonce: 7, gas: 51_234, gasPrice: big.NewInt(1_000_000_000)}
}

// ---------------------------------------------------------------------------
// Prepare
// ---------------------------------------------------------------------------

func TestPrepareUsesEstimate(t *testing.T) {
	be := newBackend()
	s := contract.NewSender(be, newKeySigner(t), sepolia)

	plan, err := s.Prepare(context.Background(), contract.BuildTransferCall(dai(t), recipient, oneToken()))
	require.NoError(t, err)
	assert.Equal(t, uint64(51_234), plan.Gas)
	assert.True(t, plan.GasEstimated)
	assert.Equal(t, uint64(7), plan.Nonce)
	assert.Equal(t, "2000000000", plan.Fees.FeeCap.String())
	assert.Equal(t, newKeySigner(t).Address(), plan.From)
}

func TestPrepareFallsBackOnEstimateError(t *testing.T) {
	be := newBackend()
	be.estimateErr = errors.New("execution reverted")
	s := contract.NewSender(be, newKeySigner(t), sepolia)

	call := contract.BuildMintCall(dai(t), recipient, oneToken())
	plan, err := s.Prepare(context.Background(), call)
	require.NoError(t, err)
	assert.False(t, plan.GasEstimated)
	assert.Equal(t, call.GasFallback(), plan.Gas)
	assert.Equal(t, "160000000000000", plan.MaxFee().String())
}

// ---------------------------------------------------------------------------
// Submit / Wait
// ---------------------------------------------------------------------------

func TestSubmitSignsAndBroadcasts(t *testing.T) {
	be := newBackend()
	signer := newKeySigner(t)
	s := contract.NewSender(be, signer, sepolia)

	call := contract.BuildApproveCall(dai(t), spender, oneToken())
	sub, err := s.Submit(context.Background(), call)
	require.NoError(t, err)
	require.Len(t, be.sent, 1)

	tx := be.sent[0]
	assert.Equal(t, sub.Hash, tx.Hash())
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, call.Target, *tx.To())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, 0, tx.Value().Sign())
	assert.Equal(t, 0, sepolia.Cmp(tx.ChainId()))

	data, err := call.Calldata()
	require.NoError(t, err)
	assert.Equal(t, data, tx.Data())

	from, err := types.Sender(types.NewLondonSigner(sepolia), tx)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), from)
}

func TestSubmitBroadcastError(t *testing.T) {
	be := newBackend()
	be.sendErr = errors.New("insufficient funds for gas")
	s := contract.NewSender(be, newKeySigner(t), sepolia)

	_, err := s.Submit(context.Background(), contract.BuildTransferCall(dai(t), recipient, oneToken()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broadcasting transaction")
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestSubmissionWait(t *testing.T) {
	be := newBackend()
	be.receipt = &chain.TxReceipt{Status: 1, BlockNumber: 99}
	s := contract.NewSender(be, newKeySigner(t), sepolia)

	sub, err := s.Submit(context.Background(), contract.BuildTransferCall(dai(t), recipient, oneToken()))
	require.NoError(t, err)

	receipt, err := sub.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sub.Hash, receipt.Hash)
	assert.Equal(t, uint64(99), receipt.BlockNumber)
}

func TestSubmissionWaitReverted(t *testing.T) {
	be := newBackend()
	be.receipt = &chain.TxReceipt{Status: 0}
	be.receiptErr = chain.ErrReverted
	s := contract.NewSender(be, newKeySigner(t), sepolia)

	sub, err := s.Submit(context.Background(), contract.BuildTransferCall(dai(t), recipient, oneToken()))
	require.NoError(t, err)

	_, err = sub.Wait(context.Background())
	assert.ErrorIs(t, err, chain.ErrReverted)
}
