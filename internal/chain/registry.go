package chain

import (
	"errors"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Network modes.
const (
	ModeMainnet = "mainnet"
	ModeTestnet = "testnet"
)

// Chain holds all metadata for a single EVM chain and its test network.
type Chain struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	ChainID         int64    `json:"chain_id"`
	TestnetChainID  int64    `json:"testnet_chain_id"`
	NativeCurrency  string   `json:"native_currency"`
	MainnetRPCs     []string `json:"mainnet_rpcs"`
	TestnetRPCs     []string `json:"testnet_rpcs"`
	MainnetExplorer string   `json:"mainnet_explorer"`
	TestnetExplorer string   `json:"testnet_explorer"`
	TestnetName     string   `json:"testnet_name"`
	FaucetURL       string   `json:"faucet_url,omitempty"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry returns the chains the dashboard can connect to.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, 2*len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
		if c.TestnetChainID != 0 {
			r.byID[c.TestnetChainID] = c
		}
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "base", "ethereum").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by mainnet or testnet chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// RPCs returns the RPC list for a chain in the given mode.
func (c *Chain) RPCs(mode string) []string {
	if mode == ModeTestnet {
		return c.TestnetRPCs
	}
	return c.MainnetRPCs
}

// Explorer returns the explorer URL for a chain in the given mode.
func (c *Chain) Explorer(mode string) string {
	if mode == ModeTestnet {
		return c.TestnetExplorer
	}
	return c.MainnetExplorer
}

// ID returns the chain ID for the given mode.
func (c *Chain) ID(mode string) int64 {
	if mode == ModeTestnet {
		return c.TestnetChainID
	}
	return c.ChainID
}

// NetworkName returns a human label such as "Ethereum (Sepolia)".
func (c *Chain) NetworkName(mode string) string {
	if mode == ModeTestnet && c.TestnetName != "" {
		return c.DisplayName + " (" + c.TestnetName + ")"
	}
	return c.DisplayName
}

// TxURL links a transaction hash on the chain's explorer, or "" if none.
func (c *Chain) TxURL(mode, hash string) string {
	base := c.Explorer(mode)
	if base == "" || hash == "" {
		return ""
	}
	return base + "/tx/" + hash
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1, TestnetChainID: 11155111,
			NativeCurrency:  "ETH",
			MainnetRPCs:     []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://sepolia.gateway.tenderly.co", "https://rpc.sepolia.org"},
			MainnetExplorer: "https://etherscan.io",
			TestnetExplorer: "https://sepolia.etherscan.io",
			TestnetName:     "Sepolia",
			FaucetURL:       "https://sepoliafaucet.com",
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137, TestnetChainID: 80002,
			NativeCurrency:  "POL",
			MainnetRPCs:     []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"},
			TestnetRPCs:     []string{"https://rpc-amoy.polygon.technology"},
			MainnetExplorer: "https://polygonscan.com",
			TestnetExplorer: "https://amoy.polygonscan.com",
			TestnetName:     "Amoy",
			FaucetURL:       "https://faucet.polygon.technology",
		},
		{
			Name: "optimism", DisplayName: "Optimism", ChainID: 10, TestnetChainID: 11155420,
			NativeCurrency:  "ETH",
			MainnetRPCs:     []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"},
			TestnetRPCs:     []string{"https://sepolia.optimism.io"},
			MainnetExplorer: "https://optimistic.etherscan.io",
			TestnetExplorer: "https://sepolia-optimism.etherscan.io",
			TestnetName:     "OP Sepolia",
			FaucetURL:       "https://www.alchemy.com/faucets/optimism-sepolia",
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum", ChainID: 42161, TestnetChainID: 421614,
			NativeCurrency:  "ETH",
			MainnetRPCs:     []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"},
			TestnetRPCs:     []string{"https://sepolia-rollup.arbitrum.io/rpc"},
			MainnetExplorer: "https://arbiscan.io",
			TestnetExplorer: "https://sepolia.arbiscan.io",
			TestnetName:     "Arb Sepolia",
			FaucetURL:       "https://www.alchemy.com/faucets/arbitrum-sepolia",
		},
		{
			Name: "base", DisplayName: "Base", ChainID: 8453, TestnetChainID: 84532,
			NativeCurrency:  "ETH",
			MainnetRPCs:     []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			TestnetRPCs:     []string{"https://sepolia.base.org"},
			MainnetExplorer: "https://basescan.org",
			TestnetExplorer: "https://sepolia.basescan.org",
			TestnetName:     "Base Sepolia",
			FaucetURL:       "https://www.alchemy.com/faucets/base-sepolia",
		},
	}
}
