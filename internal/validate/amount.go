package validate

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Messages shown inline under amount fields.
const (
	msgAmountRequired = "Amount must be greater than 0"
	msgAmountInvalid  = "Invalid amount format"
	msgInsufficient   = "Insufficient balance"
)

// Parse errors returned by ParseUnits.
var (
	ErrNotDecimal      = errors.New("not a plain decimal number")
	ErrTooManyDecimals = errors.New("too many fractional digits")
	ErrAmountOverflow  = errors.New("amount exceeds uint256")
)

// MaxUint256 is the largest amount a token contract can represent.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ValidateAmount checks a user-supplied decimal amount and converts it to
// the token's smallest unit. A nil ceiling disables the balance check.
// The returned amount is nil unless the Result is valid.
func ValidateAmount(input string, decimals uint8, ceiling *big.Int) (*big.Int, Result) {
	if input == "" || input == "0" {
		return nil, fail(Required, msgAmountRequired)
	}
	amount, err := ParseUnits(input, decimals)
	if err != nil {
		return nil, fail(MalformedNumber, msgAmountInvalid)
	}
	if amount.Sign() == 0 {
		return nil, fail(Required, msgAmountRequired)
	}
	if ceiling != nil && amount.Cmp(ceiling) > 0 {
		return nil, fail(InsufficientBalance, msgInsufficient)
	}
	return amount, Valid
}

// ParseUnits converts a decimal string such as "1.5" into an integer count
// of smallest units (1.5 with 6 decimals → 1500000). Only digits and a single
// '.' are accepted; signs, exponents, separators and whitespace are rejected.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotDecimal, s)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return nil, fmt.Errorf("%w: %q", ErrNotDecimal, s)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q has %d, token allows %d", ErrTooManyDecimals, s, len(frac), decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotDecimal, s)
	}
	if n.Cmp(MaxUint256) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	return n, nil
}

// FormatUnits renders a smallest-unit amount as a decimal string without
// trailing fractional zeros (1500000 with 6 decimals → "1.5").
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	neg := amount.Sign() < 0
	s := new(big.Int).Abs(amount).String()
	if decimals > 0 {
		d := int(decimals)
		if len(s) <= d {
			s = strings.Repeat("0", d-len(s)+1) + s
		}
		whole, frac := s[:len(s)-d], strings.TrimRight(s[len(s)-d:], "0")
		s = whole
		if frac != "" {
			s += "." + frac
		}
	}
	if neg {
		return "-" + s
	}
	return s
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
