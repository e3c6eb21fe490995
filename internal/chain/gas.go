package chain

import (
	"context"
	"math/big"
)

// Fees holds EIP-1559 fee caps for a new transaction.
type Fees struct {
	GasPrice   *big.Int // legacy eth_gasPrice (Wei)
	TipCap     *big.Int
	FeeCap     *big.Int
	TipCapGwei float64
}

// FeeSource is the subset of a client needed to price a transaction.
type FeeSource interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// SuggestFees prices a dynamic-fee transaction from eth_gasPrice. The tip is
// the gas price and the fee cap is twice that.
func SuggestFees(ctx context.Context, src FeeSource) (*Fees, error) {
	gp, err := src.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return &Fees{
		GasPrice:   gp,
		TipCap:     new(big.Int).Set(gp),
		FeeCap:     new(big.Int).Mul(gp, big.NewInt(2)),
		TipCapGwei: WeiToGwei(gp),
	}, nil
}

// MaxCost returns gas*feeCap, the most the transaction can spend on gas.
func (f *Fees) MaxCost(gas uint64) *big.Int {
	return new(big.Int).Mul(f.FeeCap, new(big.Int).SetUint64(gas))
}

// WeiToGwei converts a Wei value to Gwei as float64.
func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		new(big.Float).SetFloat64(1e9),
	).Float64()
	return f
}
