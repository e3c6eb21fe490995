package config

import (
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/token"
)

// Config holds all tokendash configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network"`
	NetworkMode    string              `json:"network_mode"` // "mainnet" | "testnet"
	DefaultWallet  string              `json:"default_wallet"`
	RPCAlgorithm   string              `json:"rpc_algorithm"`  // "fastest" | "failover"
	WatchInterval  int                 `json:"watch_interval"` // seconds
	CustomRPCs     map[string][]string `json:"custom_rpcs"`
	Tokens         []token.Spec        `json:"tokens,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}

// WatchEvery is the events polling interval.
func (c *Config) WatchEvery() time.Duration {
	if c.WatchInterval <= 0 {
		return DefaultWatchInterval
	}
	return time.Duration(c.WatchInterval) * time.Second
}

// IsTestnet reports whether the configured mode is testnet.
func (c *Config) IsTestnet() bool {
	return c.NetworkMode == modeTestnet
}
