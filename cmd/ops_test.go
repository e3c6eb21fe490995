package cmd

import (
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/form"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSelf      = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testRecipient = "0x1111111111111111111111111111111111111111"
)

func builtinToken(t *testing.T, symbol string) token.Token {
	t.Helper()
	reg, err := token.NewRegistry(nil)
	require.NoError(t, err)
	tok, err := reg.Get(symbol)
	require.NoError(t, err)
	return tok
}

// ---------------------------------------------------------------------------
// fillForm
// ---------------------------------------------------------------------------

func TestFillForm_Valid(t *testing.T) {
	f := form.New(form.KindTransfer, builtinToken(t, "DAI"), testSelf)
	require.NoError(t, fillForm(f, testRecipient, "1.5"))
	assert.True(t, f.CanSubmit())
}

func TestFillForm_BadAddress(t *testing.T) {
	f := form.New(form.KindTransfer, builtinToken(t, "DAI"), testSelf)
	err := fillForm(f, "0x123", "1")
	require.ErrorIs(t, err, form.ErrNotSubmittable)
	assert.Contains(t, err.Error(), "recipient")
	assert.Contains(t, err.Error(), "Invalid Ethereum address")
}

func TestFillForm_ApproveSelf(t *testing.T) {
	f := form.New(form.KindApprove, builtinToken(t, "DAI"), testSelf)
	err := fillForm(f, testSelf, "1")
	require.ErrorIs(t, err, form.ErrNotSubmittable)
	assert.Contains(t, err.Error(), "spender")
}

func TestFillForm_TooManyDecimals(t *testing.T) {
	f := form.New(form.KindMint, builtinToken(t, "USDC"), testSelf)
	err := fillForm(f, testRecipient, "0.0000001")
	require.ErrorIs(t, err, form.ErrNotSubmittable)
	assert.Contains(t, err.Error(), "Invalid amount format")
}

func TestFillForm_InsufficientBalance(t *testing.T) {
	f := form.New(form.KindTransfer, builtinToken(t, "DAI"), testSelf)
	f.SetBalance(big.NewInt(0))
	err := fillForm(f, testRecipient, "1")
	require.ErrorIs(t, err, form.ErrNotSubmittable)
	assert.Contains(t, err.Error(), "Insufficient balance")
}

// ---------------------------------------------------------------------------
// previewPairs
// ---------------------------------------------------------------------------

func testPlan(t *testing.T, estimated bool) *contract.Plan {
	t.Helper()
	amount, _ := new(big.Int).SetString("1500000000000000000", 10)
	return &contract.Plan{
		Call:         contract.BuildTransferCall(builtinToken(t, "DAI"), common.HexToAddress(testRecipient), amount),
		From:         common.HexToAddress(testSelf),
		Nonce:        7,
		Gas:          65000,
		GasEstimated: estimated,
		Fees:         &chain.Fees{FeeCap: big.NewInt(2_000_000_000)},
	}
}

func pairMap(pairs [][2]string) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p[0]] = p[1]
	}
	return m
}

func TestPreviewPairs_Estimated(t *testing.T) {
	pairs := previewPairs(testPlan(t, true), "Ethereum (Sepolia)", "ETH")
	require.Len(t, pairs, 9)
	m := pairMap(pairs)

	assert.Contains(t, m["Operation"], "transfer 1.5 DAI to")
	assert.Contains(t, m["Recipient"], testRecipient)
	assert.Equal(t, "7", m["Nonce"])
	assert.Equal(t, "65000", m["Gas Limit"])
	assert.Equal(t, "2.00 Gwei", m["Max Fee/Gas"])
	// 65000 * 2 gwei = 0.00013 ETH
	assert.Equal(t, "0.00013 ETH", m["Max Cost"])
}

func TestWithAllowance_AddsRowAfterSpender(t *testing.T) {
	dai := builtinToken(t, "DAI")
	plan := testPlan(t, true)
	plan.Call = contract.BuildApproveCall(dai, common.HexToAddress(testRecipient), big.NewInt(1))

	current, _ := new(big.Int).SetString("2500000000000000000", 10)
	pairs := withAllowance(previewPairs(plan, "Ethereum (Sepolia)", "ETH"), current, dai)
	require.Len(t, pairs, 10)
	assert.Equal(t, "Spender", pairs[3][0])
	assert.Equal(t, "Current Allowance", pairs[4][0])
	assert.Contains(t, pairs[4][1], "2.5")
	assert.Contains(t, pairs[4][1], "DAI")
}

func TestWithAllowance_Unlimited(t *testing.T) {
	dai := builtinToken(t, "DAI")
	plan := testPlan(t, true)
	plan.Call = contract.BuildApproveCall(dai, common.HexToAddress(testRecipient), big.NewInt(1))

	m := pairMap(withAllowance(previewPairs(plan, "Ethereum (Sepolia)", "ETH"), validate.MaxUint256, dai))
	assert.Contains(t, m["Current Allowance"], "unlimited")
}

func TestWithAllowance_TransferUnchanged(t *testing.T) {
	pairs := previewPairs(testPlan(t, true), "Ethereum (Sepolia)", "ETH")
	assert.Equal(t, pairs, withAllowance(pairs, big.NewInt(5), builtinToken(t, "DAI")))
}

func TestPreviewPairs_FallbackGas(t *testing.T) {
	m := pairMap(previewPairs(testPlan(t, false), "Base (Sepolia)", "ETH"))
	assert.Equal(t, "65000 (fallback)", m["Gas Limit"])
}
