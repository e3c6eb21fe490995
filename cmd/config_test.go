package cmd

import (
	"testing"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPairs(t *testing.T) {
	c, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.AddRPC("ethereum", "https://a.example"))
	require.NoError(t, c.AddRPC("base", "https://b.example"))
	c.Tokens = []token.Spec{{Symbol: "LINK"}}

	m := pairMap(configPairs(c))
	assert.Equal(t, "testnet", m["network_mode"])
	assert.Equal(t, "fastest", m["rpc_algorithm"])
	assert.Contains(t, m["default_wallet"], "(unset)")
	assert.Equal(t, "2", m["custom_rpcs"])
	assert.Equal(t, "1 custom", m["tokens"])
}

func TestNetworkTable_Testnets(t *testing.T) {
	chains := chainReg.All()

	out := networkTable(chains, true)
	assert.Contains(t, out, "Sepolia")
	assert.Contains(t, out, "11155111")

	out = networkTable(chains, false)
	assert.NotContains(t, out, "Sepolia")
	assert.NotContains(t, out, "11155111")
	assert.Contains(t, out, "ethereum")
}
