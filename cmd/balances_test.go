package cmd

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers balanceOf with a fixed balance per token address.
type fakeCaller struct {
	balances map[common.Address]*big.Int
}

func (f fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	bal, ok := f.balances[*msg.To]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return contract.ERC20.Methods["balanceOf"].Outputs.Pack(bal)
}

func TestFetchBalances(t *testing.T) {
	dai := builtinToken(t, "DAI")
	usdc := builtinToken(t, "USDC")
	daiBal, _ := new(big.Int).SetString("1234500000000000000000", 10)

	reader := contract.NewReader(fakeCaller{balances: map[common.Address]*big.Int{
		dai.Address:  daiBal,
		usdc.Address: big.NewInt(1_000_000),
	}})

	entries := fetchBalances(context.Background(), reader, []token.Token{dai, usdc}, common.HexToAddress(testSelf))
	require.Len(t, entries, 2)
	assert.Equal(t, "DAI", entries[0].Token.Symbol)
	assert.Equal(t, "1234.5", entries[0].Balance)
	assert.Empty(t, entries[0].Err)
	assert.Equal(t, "USDC", entries[1].Token.Symbol)
	assert.Equal(t, "1", entries[1].Balance)
}

func TestFetchBalances_ErrorPerRow(t *testing.T) {
	dai := builtinToken(t, "DAI")
	usdc := builtinToken(t, "USDC")
	reader := contract.NewReader(fakeCaller{balances: map[common.Address]*big.Int{
		usdc.Address: big.NewInt(0),
	}})

	entries := fetchBalances(context.Background(), reader, []token.Token{dai, usdc}, common.HexToAddress(testSelf))
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Err, "execution reverted")
	assert.Empty(t, entries[0].Balance)
	assert.Empty(t, entries[1].Err, "one failing token does not affect the others")
	assert.Equal(t, "0", entries[1].Balance)
}
