// Package ens resolves ENS names to addresses and back.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Registry is the ENS registry, deployed at the same address on mainnet
// and Sepolia.
var Registry = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// ErrNotFound is returned when a name or address has no ENS record.
var ErrNotFound = errors.New("ens record not found")

const resolverABI = `[
	{"type":"function","name":"resolver","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"addr","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]}
]`

// ABI covers the registry and resolver methods used here.
var ABI = mustParse(resolverABI)

func mustParse(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}

// IsName reports whether s looks like an ENS name rather than an address
// or a wallet name: dot-separated labels, none empty.
func IsName(s string) bool {
	if strings.HasPrefix(s, "0x") || !strings.Contains(s, ".") {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

// Resolve returns the address record of name.
func Resolve(ctx context.Context, backend contract.Caller, name string) (common.Address, error) {
	node := Namehash(strings.ToLower(name))

	resolver, err := callAddress(ctx, backend, Registry, "resolver", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS registry: %w", err)
	}
	if resolver == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no resolver set for %q", ErrNotFound, name)
	}

	addr, err := callAddress(ctx, backend, resolver, "addr", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS resolver: %w", err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no address record for %q", ErrNotFound, name)
	}
	return addr, nil
}

// ReverseLookup returns the primary name of addr. The name must resolve
// back to addr, otherwise ErrNotFound is returned.
func ReverseLookup(ctx context.Context, backend contract.Caller, addr common.Address) (string, error) {
	node := Namehash(strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse")

	resolver, err := callAddress(ctx, backend, Registry, "resolver", node)
	if err != nil {
		return "", fmt.Errorf("querying reverse registry: %w", err)
	}
	if resolver == (common.Address{}) {
		return "", fmt.Errorf("%w: no reverse record for %s", ErrNotFound, addr.Hex())
	}

	out, err := call(ctx, backend, resolver, "name", node)
	if err != nil {
		return "", fmt.Errorf("querying reverse resolver: %w", err)
	}
	name, _ := out[0].(string)
	if name == "" {
		return "", fmt.Errorf("%w: no reverse name for %s", ErrNotFound, addr.Hex())
	}

	forward, err := Resolve(ctx, backend, name)
	if err != nil || forward != addr {
		return "", fmt.Errorf("%w: %s does not resolve back to %s", ErrNotFound, name, addr.Hex())
	}
	return name, nil
}

// Namehash implements the EIP-137 namehash of a normalised name.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak256([]byte(labels[i]))
		node = common.BytesToHash(keccak256(node[:], label))
	}
	return node
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

func callAddress(ctx context.Context, backend contract.Caller, to common.Address, method string, node common.Hash) (common.Address, error) {
	out, err := call(ctx, backend, to, method, node)
	if err != nil {
		return common.Address{}, err
	}
	addr, _ := out[0].(common.Address)
	return addr, nil
}

// call returns a single zero value when to has no code, so a missing
// resolver reads as an unset record.
func call(ctx context.Context, backend contract.Caller, to common.Address, method string, node common.Hash) ([]interface{}, error) {
	data, err := ABI.Pack(method, [32]byte(node))
	if err != nil {
		return nil, err
	}
	raw, err := backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []interface{}{nil}, nil
	}
	return ABI.Unpack(method, raw)
}
