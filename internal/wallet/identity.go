package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
)

// ErrWrongNetwork is returned when the connected node is not on the chain a
// token lives on.
var ErrWrongNetwork = errors.New("wrong network")

// ChainIDReader reports the chain ID of a connected node.
type ChainIDReader interface {
	ChainID64(ctx context.Context) (int64, error)
}

// RequireChain checks that the node behind c serves want. The error names
// the network to switch to.
func RequireChain(ctx context.Context, c ChainIDReader, want int64, reg *chain.Registry) error {
	got, err := c.ChainID64(ctx)
	if err != nil {
		return fmt.Errorf("reading chain id: %w", err)
	}
	if got == want {
		return nil
	}
	return fmt.Errorf("%w: connected to chain %d, switch to %s", ErrWrongNetwork, got, networkLabel(reg, want))
}

func networkLabel(reg *chain.Registry, id int64) string {
	if reg == nil {
		return fmt.Sprintf("chain %d", id)
	}
	c, err := reg.GetByChainID(id)
	if err != nil {
		return fmt.Sprintf("chain %d", id)
	}
	mode := chain.ModeMainnet
	if c.TestnetChainID == id {
		mode = chain.ModeTestnet
	}
	return c.NetworkName(mode)
}
