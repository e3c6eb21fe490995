package contract

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the write side of an RPC client. *chain.EVMClient satisfies it.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*chain.TxReceipt, error)
}

// TxSigner signs transactions for one account. *wallet.Signer satisfies it.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Plan is a priced, unsigned transaction for a Call, shown to the user
// before they confirm.
type Plan struct {
	Call         Call
	From         common.Address
	Nonce        uint64
	Gas          uint64
	GasEstimated bool // false when the fallback limit was used
	Fees         *chain.Fees
	data         []byte
}

// MaxFee is the most the transaction can spend on gas, in wei.
func (p *Plan) MaxFee() *big.Int { return p.Fees.MaxCost(p.Gas) }

// Sender prices, signs and broadcasts token calls.
type Sender struct {
	backend  Backend
	signer   TxSigner
	chainID  *big.Int
	interval time.Duration
}

// NewSender creates a Sender for chainID.
func NewSender(backend Backend, signer TxSigner, chainID *big.Int) *Sender {
	return &Sender{
		backend:  backend,
		signer:   signer,
		chainID:  chainID,
		interval: config.ReceiptPollInterval,
	}
}

// SetPollInterval overrides how often Submission.Wait polls for a receipt.
func (s *Sender) SetPollInterval(d time.Duration) { s.interval = d }

// Prepare encodes call, estimates gas and fetches fees and nonce.
func (s *Sender) Prepare(ctx context.Context, call Call) (*Plan, error) {
	data, err := call.Calldata()
	if err != nil {
		return nil, err
	}
	from := s.signer.Address()
	to := call.Target

	plan := &Plan{Call: call, From: from, data: data, GasEstimated: true}

	plan.Gas, err = s.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
	if err != nil {
		log.Warn("gas estimate failed, using fallback", "fn", call.Function, "fallback", call.GasFallback(), "err", err)
		plan.Gas = call.GasFallback()
		plan.GasEstimated = false
	}

	plan.Fees, err = chain.SuggestFees(ctx, s.backend)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}

	plan.Nonce, err = s.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}
	return plan, nil
}

// Send signs and broadcasts a prepared plan.
func (s *Sender) Send(ctx context.Context, plan *Plan) (*Submission, error) {
	to := plan.Call.Target
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     plan.Nonce,
		GasTipCap: plan.Fees.TipCap,
		GasFeeCap: plan.Fees.FeeCap,
		Gas:       plan.Gas,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      plan.data,
	})

	signed, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	log.Debug("submitted", "fn", plan.Call.Function, "hash", signed.Hash().Hex(), "nonce", plan.Nonce, "gas", plan.Gas)
	return &Submission{Hash: signed.Hash(), Plan: plan, sender: s}, nil
}

// Submit prepares and sends call in one step.
func (s *Sender) Submit(ctx context.Context, call Call) (*Submission, error) {
	plan, err := s.Prepare(ctx, call)
	if err != nil {
		return nil, err
	}
	return s.Send(ctx, plan)
}

// Submission is a broadcast transaction awaiting confirmation.
type Submission struct {
	Hash   common.Hash
	Plan   *Plan
	sender *Sender
}

// Wait blocks until the transaction is mined or ctx is done. A reverted
// transaction returns its receipt and an error wrapping chain.ErrReverted.
func (sub *Submission) Wait(ctx context.Context) (*chain.TxReceipt, error) {
	return sub.sender.backend.WaitForReceipt(ctx, sub.Hash, sub.sender.interval)
}
