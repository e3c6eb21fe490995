// Package config loads and saves ~/.tokendash/config.json and the
// environment overrides that sit on top of it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultNetwork   = "ethereum"
	defaultAlgorithm = "fastest"

	modeMainnet = "mainnet"
	modeTestnet = "testnet"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	envFile     = ".env"
)

// Environment variables.
const (
	EnvConfigDir      = "TOKENDASH_CONFIG_DIR"
	EnvRPCURL         = "TOKENDASH_RPC_URL"
	EnvEnableTestnets = "TOKENDASH_ENABLE_TESTNETS"
)

// ErrUnknownKey is returned by Set and Get for keys config.json does not have.
var ErrUnknownKey = errors.New("unknown config key")

// Load reads config from dir (or creates defaults). dir defaults to
// $TOKENDASH_CONFIG_DIR, then ~/.tokendash. A .env file in the working
// directory and then in dir is loaded first; variables already set win.
func Load(dir string) (*Config, error) {
	loadEnvFile(envFile)

	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".tokendash")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}
	loadEnvFile(filepath.Join(dir, envFile))

	cfg, err := loadJSON(filepath.Join(dir, configFile), defaults())
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where wallet metadata is stored.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// RPCsFor returns the endpoints to try for a chain: $TOKENDASH_RPC_URL,
// then custom RPCs, then the built-in list. Duplicates are dropped.
func (c *Config) RPCsFor(chain string, builtin []string) []string {
	var out []string
	add := func(u string) {
		if u != "" && !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	add(strings.TrimSpace(os.Getenv(EnvRPCURL)))
	for _, u := range c.CustomRPCs[chain] {
		add(u)
	}
	for _, u := range builtin {
		add(u)
	}
	return out
}

// TestnetsEnabled is false only when $TOKENDASH_ENABLE_TESTNETS is a false
// boolean.
func TestnetsEnabled() bool {
	v := os.Getenv(EnvEnableTestnets)
	if v == "" {
		return true
	}
	on, err := strconv.ParseBool(v)
	return err != nil || on
}

// Keys lists the settable scalar keys, sorted.
func Keys() []string {
	keys := []string{"default_network", "network_mode", "default_wallet", "rpc_algorithm", "watch_interval"}
	sort.Strings(keys)
	return keys
}

// Get returns the display value of a scalar key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "default_network":
		return c.DefaultNetwork, nil
	case "network_mode":
		return c.NetworkMode, nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "rpc_algorithm":
		return c.RPCAlgorithm, nil
	case "watch_interval":
		return strconv.Itoa(c.WatchInterval), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set validates and assigns a scalar key. It does not save.
func (c *Config) Set(key, value string) error {
	switch key {
	case "default_network":
		c.DefaultNetwork = strings.ToLower(value)
	case "network_mode":
		if value != modeMainnet && value != modeTestnet {
			return fmt.Errorf("network_mode must be %q or %q, got %q", modeMainnet, modeTestnet, value)
		}
		c.NetworkMode = value
	case "default_wallet":
		c.DefaultWallet = value
	case "rpc_algorithm":
		if value != "fastest" && value != "failover" {
			return fmt.Errorf("rpc_algorithm must be \"fastest\" or \"failover\", got %q", value)
		}
		c.RPCAlgorithm = value
	case "watch_interval":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("watch_interval must be a positive number of seconds, got %q", value)
		}
		c.WatchInterval = n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// --- helpers ---

func defaults() *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		NetworkMode:    modeTestnet,
		RPCAlgorithm:   defaultAlgorithm,
		WatchInterval:  int(DefaultWatchInterval.Seconds()),
		CustomRPCs:     make(map[string][]string),
	}
}

// loadJSON decodes path over fallback. A missing file yields fallback as is.
func loadJSON[T any](path string, fallback *T) (*T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fallback, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, fallback); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return fallback, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// loadEnvFile loads a dotenv file if present; existing variables are kept.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}
