package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNoContract is returned when a read hits an address with no code.
var ErrNoContract = errors.New("no contract at address")

// Caller is the read side of an RPC client.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader calls view functions on ERC-20 tokens.
type Reader struct {
	backend Caller
}

// NewReader creates a Reader.
func NewReader(backend Caller) *Reader {
	return &Reader{backend: backend}
}

// BalanceOf returns owner's balance in smallest units.
func (r *Reader) BalanceOf(ctx context.Context, tok, owner common.Address) (*big.Int, error) {
	out, err := r.call(ctx, tok, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return convert[*big.Int](out[0]), nil
}

// Allowance returns how much spender may move on owner's behalf.
func (r *Reader) Allowance(ctx context.Context, tok, owner, spender common.Address) (*big.Int, error) {
	out, err := r.call(ctx, tok, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return convert[*big.Int](out[0]), nil
}

// Decimals returns the token's decimals().
func (r *Reader) Decimals(ctx context.Context, tok common.Address) (uint8, error) {
	out, err := r.call(ctx, tok, "decimals")
	if err != nil {
		return 0, err
	}
	return convert[uint8](out[0]), nil
}

// Symbol returns the token's symbol().
func (r *Reader) Symbol(ctx context.Context, tok common.Address) (string, error) {
	out, err := r.call(ctx, tok, "symbol")
	if err != nil {
		return "", err
	}
	return convert[string](out[0]), nil
}

func (r *Reader) call(ctx context.Context, tok common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := ERC20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	raw, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &tok, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", method, tok.Hex(), err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s on %s: %w", method, tok.Hex(), ErrNoContract)
	}
	out, err := ERC20.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", method, err)
	}
	return out, nil
}

// convert copies an unpacked ABI value into T, as abigen bindings do.
func convert[T any](v interface{}) T {
	return *abi.ConvertType(v, new(T)).(*T)
}
