package contract

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/ethereum/go-ethereum/common"
)

// Function is a state-changing token function the dashboard can call.
type Function string

const (
	FuncApprove  Function = "approve"
	FuncTransfer Function = "transfer"
	FuncMint     Function = "mint"
)

// Call describes one write call: Function(Account, Amount) on Target.
// Symbol and Decimals travel along for display only.
type Call struct {
	Target   common.Address
	Function Function
	Account  common.Address // spender for approve, recipient otherwise
	Amount   *big.Int       // smallest units
	Symbol   string
	Decimals uint8
}

// BuildApproveCall describes approve(spender, amount) on tok.
func BuildApproveCall(tok token.Token, spender common.Address, amount *big.Int) Call {
	return newCall(tok, FuncApprove, spender, amount)
}

// BuildTransferCall describes transfer(to, amount) on tok.
func BuildTransferCall(tok token.Token, to common.Address, amount *big.Int) Call {
	return newCall(tok, FuncTransfer, to, amount)
}

// BuildMintCall describes mint(to, amount) on tok.
func BuildMintCall(tok token.Token, to common.Address, amount *big.Int) Call {
	return newCall(tok, FuncMint, to, amount)
}

func newCall(tok token.Token, fn Function, account common.Address, amount *big.Int) Call {
	return Call{
		Target:   tok.Address,
		Function: fn,
		Account:  account,
		Amount:   new(big.Int).Set(amount),
		Symbol:   tok.Symbol,
		Decimals: tok.Decimals,
	}
}

// Args returns the positional arguments in ABI order.
func (c Call) Args() []interface{} {
	return []interface{}{c.Account, c.Amount}
}

// Calldata ABI-encodes the call.
func (c Call) Calldata() ([]byte, error) {
	data, err := ERC20.Pack(string(c.Function), c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", c.Function, err)
	}
	return data, nil
}

// GasFallback is the gas limit used when estimation fails.
func (c Call) GasFallback() uint64 {
	switch c.Function {
	case FuncMint:
		return config.GasLimitERC20Mint
	case FuncApprove:
		return config.GasLimitERC20Approve
	default:
		return config.GasLimitERC20Transfer
	}
}

// AccountLabel names the address argument ("Spender" or "Recipient").
func (c Call) AccountLabel() string {
	if c.Function == FuncApprove {
		return "Spender"
	}
	return "Recipient"
}

// String renders e.g. "transfer 1.5 USDC to 0x1111…".
func (c Call) String() string {
	prep := "to"
	if c.Function == FuncApprove {
		prep = "for"
	}
	return fmt.Sprintf("%s %s %s %s %s", c.Function, validate.FormatUnits(c.Amount, c.Decimals), c.Symbol, prep, c.Account.Hex())
}
