package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/ens"
	"github.com/Mohsinsiddi/tokendash/internal/form"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/Mohsinsiddi/tokendash/internal/wallet"
	"github.com/spf13/cobra"
)

var errCancelled = errors.New("cancelled")

var opYes bool

var approveCmd = newOpCmd(form.KindApprove, "<token> <spender> <amount>",
	"Allow a spender to move your tokens",
	`Set the allowance of a spender over the selected wallet's tokens.

Examples:
  tokendash approve DAI 0x2222...2222 100
  tokendash approve USDC router 25.5 --yes`)

var transferCmd = newOpCmd(form.KindTransfer, "<token> <recipient> <amount>",
	"Send tokens to another account",
	`Transfer tokens from the selected wallet. The amount may not exceed the
wallet's balance and the recipient may not be the wallet itself. The
recipient may be an address, a wallet name or an ENS name.

Examples:
  tokendash transfer DAI 0x1111...1111 1.5
  tokendash transfer USDC alice 10 --wallet bob
  tokendash transfer DAI vitalik.eth 1`)

var mintCmd = newOpCmd(form.KindMint, "<token> <recipient> <amount>",
	"Mint test tokens",
	`Mint tokens to a recipient. Only tokens with a public mint, such as the
built-in Sepolia DAI and USDC, support this.

Examples:
  tokendash mint DAI 0xf39F...2266 1000`)

func newOpCmd(kind form.Kind, args, short, long string) *cobra.Command {
	c := &cobra.Command{
		Use:   string(kind) + " " + args,
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd.Context(), kind, args[0], args[1], args[2])
		},
	}
	c.Flags().BoolVarP(&opYes, "yes", "y", false, "skip the confirmation prompt")
	return c
}

// runOperation drives one form from input to confirmation, the same path
// the dashboard takes.
func runOperation(ctx context.Context, kind form.Kind, symbol, account, amount string) error {
	mgr := newWalletManager()
	w, err := resolveWallet(mgr)
	if err != nil {
		return err
	}
	if !w.CanSign() {
		return fmt.Errorf("%w: %q (add it again with a private key)", wallet.ErrWatchOnly, w.Name)
	}
	if !validate.IsAddress(account) {
		if addr, err := resolveAddress(mgr, account); err == nil {
			account = addr.Hex()
		}
	}

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if ens.IsName(account) {
		addr, err := sess.account(ctx, mgr, account)
		if err != nil {
			return err
		}
		fmt.Println(ui.Info(fmt.Sprintf("%s resolves to %s", account, ui.Addr(addr.Hex()))))
		account = addr.Hex()
	}

	tok, err := sess.token(ctx, symbol)
	if err != nil {
		return err
	}
	if kind == form.KindMint && !tok.Mintable {
		return fmt.Errorf("%s has no public mint", tok.Symbol)
	}

	f := form.New(kind, tok, w.Address)
	if kind == form.KindTransfer {
		bal, err := contract.NewReader(sess.client).BalanceOf(ctx, tok.Address, w.Addr())
		if err != nil {
			return err
		}
		f.SetBalance(bal)
	}
	if err := fillForm(f, account, amount); err != nil {
		return err
	}

	signer, err := mgr.Signer(w.Name)
	if err != nil {
		return err
	}
	sender := contract.NewSender(sess.client, signer, big.NewInt(sess.chainID))

	call, err := f.Submit()
	if err != nil {
		return err
	}
	plan, err := sender.Prepare(ctx, call)
	if err != nil {
		_ = f.Fail(err)
		return err
	}

	pairs := previewPairs(plan, sess.Network(), sess.chain.NativeCurrency)
	if kind == form.KindApprove {
		current, err := contract.NewReader(sess.client).Allowance(ctx, tok.Address, w.Addr(), call.Account)
		if err != nil {
			_ = f.Fail(err)
			return err
		}
		pairs = withAllowance(pairs, current, tok)
	}
	fmt.Println(ui.KeyValueBlock("Transaction Preview", pairs))
	if !opYes && !ui.Confirm("Sign and broadcast this transaction?") {
		_ = f.Fail(errCancelled)
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}

	spin := ui.NewSpinner("Signing and broadcasting...")
	spin.Start()
	sub, err := sender.Send(ctx, plan)
	spin.Stop()
	if err != nil {
		_ = f.Fail(err)
		return err
	}
	if err := f.Broadcast(sub.Hash); err != nil {
		return err
	}
	fmt.Println(ui.Info("Sent " + ui.Addr(sub.Hash.Hex())))
	if url := sess.txURL(sub.Hash.Hex()); url != "" {
		fmt.Println(ui.Hint(url))
	}

	wctx, cancel := context.WithTimeout(ctx, config.TxConfirmTimeout)
	defer cancel()
	spin = ui.NewSpinner("Waiting for confirmation...")
	spin.Start()
	receipt, err := sub.Wait(wctx)
	spin.Stop()
	if err != nil {
		_ = f.Fail(err)
		return fmt.Errorf("%s not confirmed: %w", kind, err)
	}
	if err := f.Confirm(); err != nil {
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("%s confirmed in block %d (gas used %d)", call, receipt.BlockNumber, receipt.GasUsed)))
	return nil
}

// fillForm sets the account and amount fields and reports the first
// inline error.
func fillForm(f *form.Form, account, amount string) error {
	if err := f.Set(f.AccountField(), account); err != nil {
		return err
	}
	if err := f.Set(form.FieldAmount, amount); err != nil {
		return err
	}
	if f.CanSubmit() {
		return nil
	}
	for _, field := range f.Fields() {
		if msg := f.FieldError(field); msg != "" {
			return fmt.Errorf("%w: %s: %s", form.ErrNotSubmittable, field, msg)
		}
	}
	return form.ErrNotSubmittable
}

// withAllowance adds the spender's current allowance after the spender row.
func withAllowance(pairs [][2]string, current *big.Int, tok token.Token) [][2]string {
	row := [2]string{"Current Allowance", ui.Val(formatAllowance(current, tok.Decimals)) + " " + ui.TokenSymbol(tok.Symbol, tok.Color)}
	out := make([][2]string, 0, len(pairs)+1)
	for _, p := range pairs {
		out = append(out, p)
		if p[0] == "Spender" {
			out = append(out, row)
		}
	}
	return out
}

func previewPairs(plan *contract.Plan, network, currency string) [][2]string {
	gas := fmt.Sprintf("%d", plan.Gas)
	if !plan.GasEstimated {
		gas += " (fallback)"
	}
	return [][2]string{
		{"Operation", ui.Val(plan.Call.String())},
		{"Token", ui.Addr(plan.Call.Target.Hex())},
		{"From", ui.Addr(plan.From.Hex())},
		{plan.Call.AccountLabel(), ui.Addr(plan.Call.Account.Hex())},
		{"Network", ui.ChainName(network)},
		{"Nonce", fmt.Sprintf("%d", plan.Nonce)},
		{"Gas Limit", gas},
		{"Max Fee/Gas", fmt.Sprintf("%.2f Gwei", chain.WeiToGwei(plan.Fees.FeeCap))},
		{"Max Cost", validate.FormatUnits(plan.MaxFee(), 18) + " " + currency},
	}
}
