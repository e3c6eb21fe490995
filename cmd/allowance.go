package cmd

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/spf13/cobra"
)

var allowanceCmd = &cobra.Command{
	Use:   "allowance <token> <spender> [owner]",
	Short: "Show how much a spender may move",
	Long: `Read allowance(owner, spender) for a token. The owner defaults to the
selected wallet. Owner and spender may be addresses, wallet names or ENS
names.

Examples:
  tokendash allowance DAI 0x2222...2222
  tokendash allowance USDC router alice
  tokendash allowance DAI uniswap.eth`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		mgr := newWalletManager()
		spender, err := sess.account(ctx, mgr, args[1])
		if err != nil {
			return err
		}
		owner, err := sess.owner(ctx, mgr, args[2:])
		if err != nil {
			return err
		}

		tok, err := sess.token(ctx, args[0])
		if err != nil {
			return err
		}
		amount, err := contract.NewReader(sess.client).Allowance(ctx, tok.Address, owner, spender)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock(tok.Symbol+" Allowance", [][2]string{
			{"Owner", ui.Addr(owner.Hex())},
			{"Spender", ui.Addr(spender.Hex())},
			{"Allowance", ui.Val(formatAllowance(amount, tok.Decimals)) + " " + ui.TokenSymbol(tok.Symbol, tok.Color)},
			{"Network", ui.ChainName(sess.Network())},
		}))
		return nil
	},
}

func formatAllowance(amount *big.Int, decimals uint8) string {
	if amount.Cmp(validate.MaxUint256) == 0 {
		return "unlimited"
	}
	return validate.FormatUnits(amount, decimals)
}
