package validate

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Messages shown inline under address fields.
const (
	msgAddressRequired = "Address is required"
	msgAddressInvalid  = "Invalid Ethereum address"
	msgSelfTransfer    = "Cannot send to yourself"
)

// ValidateAddress checks that input is a 0x-prefixed 20-byte hex address.
// Input with any uppercase letter must carry a correct EIP-55 checksum. When self is
// non-empty, input must not equal it (case-insensitive).
func ValidateAddress(input, self string) Result {
	if input == "" {
		return fail(Required, msgAddressRequired)
	}
	if !IsAddress(input) {
		return fail(Malformed, msgAddressInvalid)
	}
	if self != "" && strings.EqualFold(input, self) {
		return fail(SelfTransferNotAllowed, msgSelfTransfer)
	}
	return Valid
}

// IsAddress reports whether s is a syntactically valid account address:
// an all-lowercase body, or one matching its EIP-55 checksum exactly.
func IsAddress(s string) bool {
	if len(s) != 2+2*common.AddressLength || s[:2] != "0x" || !common.IsHexAddress(s) {
		return false
	}
	if strings.ToLower(s) == s {
		return true
	}
	return Checksum(s) == s
}

// Checksum returns the EIP-55 mixed-case form of a valid address.
func Checksum(s string) string {
	return common.HexToAddress(s).Hex()
}
