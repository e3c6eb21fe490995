package chain_test

import (
	"testing"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasAllChains(t *testing.T) {
	registry := chain.NewRegistry()
	assert.Equal(t, 5, len(registry.All()))
}

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
		testnet int64
	}{
		{"ethereum", 1, 11155111},
		{"base", 8453, 84532},
		{"polygon", 137, 80002},
		{"arbitrum", 42161, 421614},
		{"optimism", 10, 11155420},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name)
			assert.Equal(t, tt.chainID, c.ID(chain.ModeMainnet))
			assert.Equal(t, tt.testnet, c.ID(chain.ModeTestnet))
		})
	}
}

func TestRegistryGetByNameCaseInsensitive(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("Ethereum")
	require.NoError(t, err)
	assert.Equal(t, "ethereum", c.Name)
}

func TestRegistryGetUnknownChain(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByName("unknownchain")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestAllChainsHaveRPC(t *testing.T) {
	registry := chain.NewRegistry()
	for _, c := range registry.All() {
		t.Run(c.Name, func(t *testing.T) {
			assert.NotEmpty(t, c.MainnetRPCs, "chain %s has no mainnet RPCs", c.Name)
			assert.NotEmpty(t, c.TestnetRPCs, "chain %s has no testnet RPCs", c.Name)
		})
	}
}

func TestAllChainsHaveExplorer(t *testing.T) {
	registry := chain.NewRegistry()
	for _, c := range registry.All() {
		t.Run(c.Name, func(t *testing.T) {
			assert.NotEmpty(t, c.MainnetExplorer, "chain %s missing mainnet explorer", c.Name)
			assert.NotEmpty(t, c.TestnetExplorer, "chain %s missing testnet explorer", c.Name)
		})
	}
}

func TestGetByChainID(t *testing.T) {
	registry := chain.NewRegistry()
	c, err := registry.GetByChainID(8453)
	require.NoError(t, err)
	assert.Equal(t, "base", c.Name)

	c, err = registry.GetByChainID(11155111)
	require.NoError(t, err)
	assert.Equal(t, "ethereum", c.Name)
}

func TestGetByChainIDUnknown(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByChainID(999999)
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestModeSelection(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("ethereum")
	require.NoError(t, err)

	assert.Equal(t, c.TestnetRPCs, c.RPCs(chain.ModeTestnet))
	assert.Equal(t, c.MainnetRPCs, c.RPCs(chain.ModeMainnet))
	assert.Equal(t, "https://sepolia.etherscan.io", c.Explorer(chain.ModeTestnet))
	assert.Equal(t, "Ethereum (Sepolia)", c.NetworkName(chain.ModeTestnet))
	assert.Equal(t, "Ethereum", c.NetworkName(chain.ModeMainnet))
}

func TestTxURL(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("ethereum")
	require.NoError(t, err)

	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", c.TxURL(chain.ModeTestnet, "0xabc"))
	assert.Equal(t, "", c.TxURL(chain.ModeTestnet, ""))
}
