package cmd

import (
	"fmt"
	"io"
	"math/big"

	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/spf13/cobra"
)

var (
	validateSelf     string
	validateDecimals uint8
	validateToken    string
	validateMax      string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check addresses and amounts offline",
}

var validateAddressCmd = &cobra.Command{
	Use:   "address <address>",
	Short: "Check an address and print its checksummed form",
	Long: `Check that an address is 0x-prefixed, 20 bytes of hex and, if it mixes
upper and lower case, carries a correct EIP-55 checksum.

Examples:
  tokendash validate address 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045
  tokendash validate address 0x1111...1111 --self 0x1111...1111`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkAddress(cmd.OutOrStdout(), args[0], validateSelf)
	},
}

var validateAmountCmd = &cobra.Command{
	Use:   "amount <amount>",
	Short: "Check an amount and print it in base units",
	Long: `Check a decimal amount against a token's decimals and an optional
maximum, and print the integer amount sent on chain.

Examples:
  tokendash validate amount 1.5
  tokendash validate amount 0.000001 --token USDC
  tokendash validate amount 12 --decimals 6 --max 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decimals := validateDecimals
		if validateToken != "" {
			reg, err := token.NewRegistry(cfg.Tokens)
			if err != nil {
				return err
			}
			tok, err := reg.Get(validateToken)
			if err != nil {
				return err
			}
			decimals = tok.Decimals
		}
		return checkAmount(cmd.OutOrStdout(), args[0], decimals, validateMax)
	},
}

func checkAddress(w io.Writer, input, self string) error {
	if r := validate.ValidateAddress(input, self); !r.OK() {
		return r.Err()
	}
	fmt.Fprintln(w, ui.Success("Valid address"))
	fmt.Fprintln(w, ui.KeyValueBlock("Address", [][2]string{
		{"Input", input},
		{"Checksummed", ui.Addr(validate.Checksum(input))},
	}))
	return nil
}

func checkAmount(w io.Writer, input string, decimals uint8, maxAmount string) error {
	var ceiling *big.Int
	if maxAmount != "" {
		c, err := validate.ParseUnits(maxAmount, decimals)
		if err != nil {
			return fmt.Errorf("--max: %w", err)
		}
		ceiling = c
	}
	amount, r := validate.ValidateAmount(input, decimals, ceiling)
	if !r.OK() {
		return r.Err()
	}
	fmt.Fprintln(w, ui.Success("Valid amount"))
	fmt.Fprintln(w, ui.KeyValueBlock("Amount", [][2]string{
		{"Input", input},
		{"Decimals", fmt.Sprintf("%d", decimals)},
		{"Base units", ui.Val(amount.String())},
	}))
	return nil
}

func init() {
	validateAddressCmd.Flags().StringVar(&validateSelf, "self", "", "reject this address (the sender)")
	validateAmountCmd.Flags().Uint8Var(&validateDecimals, "decimals", 18, "token decimals")
	validateAmountCmd.Flags().StringVar(&validateToken, "token", "", "take decimals from a token symbol")
	validateAmountCmd.Flags().StringVar(&validateMax, "max", "", "largest allowed amount, e.g. a balance")
	validateCmd.AddCommand(validateAddressCmd, validateAmountCmd)
}
