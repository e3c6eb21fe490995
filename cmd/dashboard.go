package cmd

import (
	"context"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/events"
	"github.com/Mohsinsiddi/tokendash/internal/log"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/Mohsinsiddi/tokendash/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive approve, transfer and mint forms with live events",
	Long: `Open the full-screen dashboard for the selected wallet.

Each token has an approve, a transfer and (when mintable) a mint form.
Fields validate as you type; enter signs and broadcasts, and the form
clears once the transaction is confirmed. Recent Transfer and Approval
events stream underneath.

Keys: tab field · enter submit · ctrl+t token · ctrl+o operation ·
ctrl+y copy tx · ctrl+e explorer · esc quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		mgr := newWalletManager()
		w, err := resolveWallet(mgr)
		if err != nil {
			return err
		}

		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		toks, err := sess.pickTokens(ctx, nil)
		if err != nil {
			return err
		}

		var sender *contract.Sender
		signer, signErr := mgr.Signer(w.Name)
		if signErr == nil {
			sender = contract.NewSender(sess.client, signer, big.NewInt(sess.chainID))
		} else {
			log.Debug("dashboard is read-only", "wallet", w.Name, "err", signErr)
		}

		model := ui.NewDashboard(ctx, ui.DashboardConfig{
			Account:   w.Address,
			Network:   sess.Network(),
			Tokens:    toks,
			Refresh:   config.BalanceRefreshPeriod,
			MaxEvents: config.MaxEventRows,
		}, dashboardActions(sess, w, sender, signErr))

		prog := tea.NewProgram(model, tea.WithAltScreen())
		done := watchInto(ctx, prog, events.NewWatcher(sess.client, toks, cfg.WatchEvery()))
		if _, err := prog.Run(); err != nil {
			return err
		}
		cancel()
		return <-done
	},
}

// dashboardActions binds the dashboard to the session. Sends are
// serialised so two forms never race for the same nonce.
func dashboardActions(sess *session, w *wallet.Wallet, sender *contract.Sender, signErr error) ui.Actions {
	reader := contract.NewReader(sess.client)
	var mu sync.Mutex
	return ui.Actions{
		Broadcast: func(ctx context.Context, call contract.Call) (common.Hash, error) {
			if sender == nil {
				return common.Hash{}, signErr
			}
			mu.Lock()
			defer mu.Unlock()
			sub, err := sender.Submit(ctx, call)
			if err != nil {
				return common.Hash{}, err
			}
			return sub.Hash, nil
		},
		Confirm: func(ctx context.Context, hash common.Hash) error {
			ctx, cancel := context.WithTimeout(ctx, config.TxConfirmTimeout)
			defer cancel()
			_, err := sess.client.WaitForReceipt(ctx, hash, config.ReceiptPollInterval)
			return err
		},
		Balance: func(ctx context.Context, tok token.Token) (*big.Int, error) {
			return reader.BalanceOf(ctx, tok.Address, w.Addr())
		},
		Allowance: func(ctx context.Context, tok token.Token, spender common.Address) (*big.Int, error) {
			return reader.Allowance(ctx, tok.Address, w.Addr(), spender)
		},
		TxURL: sess.txURL,
	}
}
