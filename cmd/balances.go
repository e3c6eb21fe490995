package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/ens"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxBalanceReads bounds concurrent balanceOf calls.
const maxBalanceReads = 4

var balancesLive bool

var balancesCmd = &cobra.Command{
	Use:   "balances [wallet-or-address]",
	Short: "Show token balances",
	Long: `Show the balance of every token on the connected chain.

Without an argument the selected wallet is used.

Examples:
  tokendash balances
  tokendash balances 0xf39F...2266
  tokendash balances alice --live
  tokendash balances vitalik.eth`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		owner, err := sess.owner(ctx, newWalletManager(), args)
		if err != nil {
			return err
		}

		toks, err := sess.pickTokens(ctx, balancesTokens)
		if err != nil {
			return err
		}
		reader := contract.NewReader(sess.client)
		fetch := func() ([]ui.BalanceEntry, error) {
			return fetchBalances(ctx, reader, toks, owner), nil
		}

		who := owner.Hex()
		if name, err := ens.ReverseLookup(ctx, sess.client, owner); err == nil {
			who = name + " (" + who + ")"
		}
		title := fmt.Sprintf("%s on %s", who, sess.Network())
		if balancesLive {
			_, err := ui.NewBalanceBoard(title, config.BalanceRefreshPeriod, fetch).Run()
			return err
		}

		spin := ui.NewSpinner("Reading balances...")
		spin.Start()
		entries, _ := fetch()
		spin.Stop()

		fmt.Println(ui.StyleTitle.Render(title))
		fmt.Println(ui.RenderBalances(entries))
		return nil
	},
}

var balancesTokens []string

// fetchBalances reads every token's balance concurrently. A failed read is
// reported on its row; the others still render.
func fetchBalances(ctx context.Context, r *contract.Reader, toks []token.Token, owner common.Address) []ui.BalanceEntry {
	entries := make([]ui.BalanceEntry, len(toks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBalanceReads)
	for i, tok := range toks {
		entries[i].Token = tok
		g.Go(func() error {
			bal, err := r.BalanceOf(gctx, tok.Address, owner)
			if err != nil {
				entries[i].Err = err.Error()
				return nil
			}
			entries[i].Balance = validate.FormatUnits(bal, tok.Decimals)
			return nil
		})
	}
	_ = g.Wait()
	return entries
}

func init() {
	balancesCmd.Flags().BoolVar(&balancesLive, "live", false, "refresh every few seconds")
	balancesCmd.Flags().StringSliceVarP(&balancesTokens, "token", "t", nil, "only these token symbols")
}
