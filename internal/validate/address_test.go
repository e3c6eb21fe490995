package validate_test

import (
	"strings"
	"testing"

	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/stretchr/testify/assert"
)

const (
	vitalik   = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	recipient = "0x1111111111111111111111111111111111111111"
)

func TestValidateAddressEmptyIsRequired(t *testing.T) {
	r := validate.ValidateAddress("", "")
	assert.Equal(t, validate.Required, r.Reason)
	assert.Equal(t, "Address is required", r.Message)
}

func TestValidateAddressMalformed(t *testing.T) {
	cases := []string{
		"not-an-address",
		"0x123",
		strings.Repeat("1", 40),
		"0X" + strings.Repeat("1", 40),
		"0x" + strings.Repeat("1", 41),
		"0x" + strings.Repeat("1", 39) + "g",
		" " + recipient,
	}
	for _, in := range cases {
		r := validate.ValidateAddress(in, "")
		assert.Equal(t, validate.Malformed, r.Reason, "input %q", in)
		assert.False(t, r.OK())
	}
}

func TestValidateAddressChecksummed(t *testing.T) {
	assert.True(t, validate.ValidateAddress(vitalik, "").OK())
}

func TestValidateAddressAllLowerSkipsChecksum(t *testing.T) {
	assert.True(t, validate.ValidateAddress(strings.ToLower(vitalik), "").OK())
	assert.True(t, validate.ValidateAddress(recipient, "").OK())
}

func TestValidateAddressAllUpperNeedsChecksum(t *testing.T) {
	r := validate.ValidateAddress("0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045", "")
	assert.Equal(t, validate.Malformed, r.Reason)
	assert.Equal(t, "Invalid Ethereum address", r.Message)
}

func TestValidateAddressBadChecksum(t *testing.T) {
	// Flip the case of one letter so the mixed-case checksum no longer matches.
	bad := "0xd8da6BF26964aF9D7eEd9e03E53415D37aA96045"
	r := validate.ValidateAddress(bad, "")
	assert.Equal(t, validate.Malformed, r.Reason)
}

func TestValidateAddressSelfTransfer(t *testing.T) {
	r := validate.ValidateAddress(vitalik, vitalik)
	assert.Equal(t, validate.SelfTransferNotAllowed, r.Reason)
	assert.Equal(t, "Cannot send to yourself", r.Message)

	// Case-insensitive comparison.
	r = validate.ValidateAddress(strings.ToLower(vitalik), vitalik)
	assert.Equal(t, validate.SelfTransferNotAllowed, r.Reason)
}

func TestValidateAddressOtherThanSelf(t *testing.T) {
	assert.True(t, validate.ValidateAddress(recipient, vitalik).OK())
}

func TestValidateAddressMalformedBeatsSelf(t *testing.T) {
	r := validate.ValidateAddress("0xabc", "0xabc")
	assert.Equal(t, validate.Malformed, r.Reason)
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, vitalik, validate.Checksum(strings.ToLower(vitalik)))
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		validate.Checksum("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"))
	assert.Equal(t, "0x0000000000000000000000000000000000000001",
		validate.Checksum("0x0000000000000000000000000000000000000001"))
}

func TestChecksumNormalisesCase(t *testing.T) {
	assert.Equal(t, vitalik, validate.Checksum("0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045"))
	assert.Equal(t, vitalik, validate.Checksum(strings.TrimPrefix(strings.ToLower(vitalik), "0x")))
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, validate.Valid.Err())
	r := validate.ValidateAddress("", "")
	assert.EqualError(t, r.Err(), "Address is required")
}
