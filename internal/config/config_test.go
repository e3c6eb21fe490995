package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "ethereum", cfg.DefaultNetwork)
	assert.Equal(t, "testnet", cfg.NetworkMode)
	assert.True(t, cfg.IsTestnet())
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, 3, cfg.WatchInterval)
	assert.Equal(t, 3*time.Second, cfg.WatchEvery())
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
}

func TestLoadFromEnvDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	t.Setenv(config.EnvConfigDir, dir)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())
	assert.DirExists(t, dir)
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultNetwork = "base"
	cfg.DefaultWallet = "mywallet"
	cfg.RPCAlgorithm = "failover"
	cfg.Tokens = []token.Spec{{Symbol: "TKN", Address: "0x1111111111111111111111111111111111111111", Decimals: 8}}

	require.NoError(t, cfg.Save())
	assert.FileExists(t, filepath.Join(dir, "config.json"))

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "base", reloaded.DefaultNetwork)
	assert.Equal(t, "mywallet", reloaded.DefaultWallet)
	assert.Equal(t, "failover", reloaded.RPCAlgorithm)
	require.Len(t, reloaded.Tokens, 1)
	assert.Equal(t, uint8(8), reloaded.Tokens[0].Decimals)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"default_wallet":"w"}`), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "w", cfg.DefaultWallet)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.NotNil(t, cfg.CustomRPCs)
}

func TestCorruptConfigErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{`), 0o600))

	_, err := config.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.json")
}

func TestAddAndRemoveCustomRPC(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("base", "https://custom.base.rpc"))
	assert.Error(t, cfg.AddRPC("base", "https://custom.base.rpc"), "duplicates are rejected")

	require.NoError(t, cfg.RemoveRPC("base", "https://custom.base.rpc"))
	assert.Empty(t, cfg.CustomRPCs["base"])
	assert.Error(t, cfg.RemoveRPC("base", "https://nope"))
}

func TestRPCsForOrder(t *testing.T) {
	t.Setenv(config.EnvRPCURL, "https://env.rpc")
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.AddRPC("ethereum", "https://custom.rpc"))

	got := cfg.RPCsFor("ethereum", []string{"https://builtin.rpc", "https://custom.rpc"})
	assert.Equal(t, []string{"https://env.rpc", "https://custom.rpc", "https://builtin.rpc"}, got)
}

func TestDotEnvInConfigDir(t *testing.T) {
	t.Setenv(config.EnvRPCURL, "")
	require.NoError(t, os.Unsetenv(config.EnvRPCURL))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TOKENDASH_RPC_URL=https://dotenv.rpc\n"), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://dotenv.rpc"}, cfg.RPCsFor("ethereum", nil))
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv(config.EnvRPCURL, "https://shell.rpc")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TOKENDASH_RPC_URL=https://dotenv.rpc\n"), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://shell.rpc"}, cfg.RPCsFor("ethereum", nil))
}

func TestTestnetsEnabled(t *testing.T) {
	t.Setenv(config.EnvEnableTestnets, "")
	assert.True(t, config.TestnetsEnabled())

	t.Setenv(config.EnvEnableTestnets, "false")
	assert.False(t, config.TestnetsEnabled())

	t.Setenv(config.EnvEnableTestnets, "1")
	assert.True(t, config.TestnetsEnabled())
}

func TestSetAndGet(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.Set("network_mode", "mainnet"))
	require.NoError(t, cfg.Set("watch_interval", "7"))
	require.NoError(t, cfg.Set("default_network", "Base"))

	v, err := cfg.Get("watch_interval")
	require.NoError(t, err)
	assert.Equal(t, "7", v)
	assert.Equal(t, 7*time.Second, cfg.WatchEvery())
	assert.Equal(t, "base", cfg.DefaultNetwork)
	assert.False(t, cfg.IsTestnet())

	assert.Error(t, cfg.Set("network_mode", "devnet"))
	assert.Error(t, cfg.Set("rpc_algorithm", "round-robin"))
	assert.Error(t, cfg.Set("watch_interval", "0"))
	assert.ErrorIs(t, cfg.Set("price_currency", "USD"), config.ErrUnknownKey)

	_, err = cfg.Get("nope")
	assert.ErrorIs(t, err, config.ErrUnknownKey)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"default_network", "default_wallet", "network_mode", "rpc_algorithm", "watch_interval"}, config.Keys())
}
