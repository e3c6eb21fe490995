package wallet

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
// The file backend avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "tokendash-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: func(string) (string, error) { return "testpass", nil },
	})
	require.NoError(t, err)
	return &Keystore{ring: ring}
}

// ---------------------------------------------------------------------------
// normaliseHexKey
// ---------------------------------------------------------------------------

func TestNormaliseHexKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0xabc123", "abc123"},
		{"0Xabc123", "abc123"},
		{"abc123", "abc123"},
		{"  0xabc  ", "abc"},
		{"0x", ""},
		{"", ""},
		{"0x" + testPrivKeyHex, testPrivKeyHex},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normaliseHexKey(tc.in), "input %q", tc.in)
	}
}

// ---------------------------------------------------------------------------
// Keystore (file backend)
// ---------------------------------------------------------------------------

func TestKeystoreStoreRetrieveDelete(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := testKeystore(t)

	ref, err := ks.Store("alice", "0x"+testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "tokendash.alice", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got, "keys are stored without prefix")

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}

func TestKeystoreRetrieveEnvOverride(t *testing.T) {
	t.Setenv(EnvPrivateKey, "0x"+testPrivKeyHex)

	ks := &Keystore{}
	got, err := ks.Retrieve("tokendash.any-ref")
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)
}

func TestKeystoreUnavailable(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := &Keystore{}

	_, err := ks.Store("x", testPrivKeyHex)
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)

	_, err = ks.Retrieve("tokendash.x")
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)

	assert.NoError(t, ks.Delete("tokendash.x"), "nothing to delete without a ring")
}

func TestFilePasswordFromEnv(t *testing.T) {
	t.Setenv(EnvKeyringPassword, "hunter2")
	pw, err := filePassword("Password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}

// ---------------------------------------------------------------------------
// InMemoryKeystore
// ---------------------------------------------------------------------------

func TestInMemoryKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("bob", "0xdead")
	require.NoError(t, err)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "dead", got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}
