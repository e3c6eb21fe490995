package token

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/ethereum/go-ethereum/common"
)

// ErrTokenNotFound is returned when a symbol is not in the registry.
var ErrTokenNotFound = errors.New("token not found")

// SepoliaChainID is the chain the built-in test tokens live on.
const SepoliaChainID int64 = 11155111

// Token describes an ERC-20 contract. Values are fixed at configuration time.
type Token struct {
	Symbol   string         `json:"symbol"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	ChainID  int64          `json:"chain_id"`
	Color    string         `json:"color,omitempty"` // hex colour for TUI accents
	Mintable bool           `json:"mintable"`
}

// Spec is the user-editable form of a Token stored in config.json.
type Spec struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	ChainID  int64  `json:"chain_id"`
	Color    string `json:"color,omitempty"`
	Mintable bool   `json:"mintable"`
}

// Builtins are the Sepolia test tokens the dashboard ships with. Both expose
// an open mint(address,uint256).
func Builtins() []Token {
	return []Token{
		{
			Symbol:   "DAI",
			Address:  common.HexToAddress("0x1D70D57ccD2798323232B2dD027B3aBcA5C00091"),
			Decimals: 18,
			ChainID:  SepoliaChainID,
			Color:    "#F5AC37",
			Mintable: true,
		},
		{
			Symbol:   "USDC",
			Address:  common.HexToAddress("0xC891481A0AaC630F4D89744ccD2C7D2C4215FD47"),
			Decimals: 6,
			ChainID:  SepoliaChainID,
			Color:    "#2775CA",
			Mintable: true,
		},
	}
}

// Registry indexes tokens by upper-cased symbol.
type Registry struct {
	tokens map[string]Token
}

// NewRegistry returns the built-ins merged with extra config tokens.
// Extra tokens override built-ins with the same symbol.
func NewRegistry(extra []Spec) (*Registry, error) {
	r := &Registry{tokens: make(map[string]Token)}
	for _, t := range Builtins() {
		r.tokens[t.Symbol] = t
	}
	for _, s := range extra {
		t, err := s.Token()
		if err != nil {
			return nil, err
		}
		r.tokens[t.Symbol] = t
	}
	return r, nil
}

// Get finds a token by symbol (case-insensitive).
func (r *Registry) Get(symbol string) (Token, error) {
	t, ok := r.tokens[strings.ToUpper(symbol)]
	if !ok {
		return Token{}, fmt.Errorf("%w: %s", ErrTokenNotFound, symbol)
	}
	return t, nil
}

// All returns every token sorted by symbol.
func (r *Registry) All() []Token {
	out := make([]Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ForChain returns the tokens deployed on chainID, sorted by symbol.
func (r *Registry) ForChain(chainID int64) []Token {
	var out []Token
	for _, t := range r.All() {
		if t.ChainID == chainID {
			out = append(out, t)
		}
	}
	return out
}

// Token validates a Spec and converts it.
func (s Spec) Token() (Token, error) {
	if s.Symbol == "" {
		return Token{}, fmt.Errorf("token spec: symbol is required")
	}
	if r := validate.ValidateAddress(s.Address, ""); !r.OK() {
		return Token{}, fmt.Errorf("token %s: %s", s.Symbol, r.Message)
	}
	chainID := s.ChainID
	if chainID == 0 {
		chainID = SepoliaChainID
	}
	return Token{
		Symbol:   strings.ToUpper(s.Symbol),
		Address:  common.HexToAddress(s.Address),
		Decimals: s.Decimals,
		ChainID:  chainID,
		Color:    s.Color,
		Mintable: s.Mintable,
	}, nil
}
