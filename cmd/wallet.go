package cmd

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/Mohsinsiddi/tokendash/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag     string
	walletAddressFlag string
	walletDefaultFlag bool
	walletYes         bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a signing or watch-only wallet",
	Long: `Add a wallet. Signing wallets keep their private key in the OS keychain
(or an encrypted file under the config directory when no keychain is
available); watch-only wallets only record an address.

Without arguments an interactive form is shown.

Examples:
  tokendash wallet add
  tokendash wallet add alice --key 0xac09...ff80
  tokendash wallet add treasury --address 0x1111...1111
  tokendash wallet add bob            # prompts for the key`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := walletInput(args)
		if err != nil {
			return err
		}
		mgr := newWalletManager()
		w, err := addWallet(mgr, in)
		if err != nil {
			return err
		}
		if in.Default || len(mgr.List()) == 1 {
			if err := useWallet(mgr, w.Name); err != nil {
				return err
			}
		}

		fmt.Println(ui.Success(fmt.Sprintf("%s wallet %q added: %s", walletTypeLabel(w.Type), w.Name, ui.Addr(w.Address))))
		if !w.IsDefault {
			fmt.Println(ui.Hint("Set as default with: tokendash wallet use " + w.Name))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: tokendash wallet add"))
			return nil
		}
		fmt.Println(walletTable(wallets))
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := useWallet(newWalletManager(), args[0]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", args[0])))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !walletYes && !ui.Confirm(fmt.Sprintf("Remove wallet %q and its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

// walletInput collects the new wallet from flags, a key prompt, or the
// interactive form.
func walletInput(args []string) (*ui.WalletInput, error) {
	if walletKeyFlag != "" && walletAddressFlag != "" {
		return nil, errors.New("--key and --address are mutually exclusive")
	}
	if len(args) == 0 {
		if !ui.Interactive() {
			return nil, errors.New("wallet name required (tokendash wallet add <name> --key|--address)")
		}
		return ui.PromptWallet(checkWalletSecret)
	}

	in := &ui.WalletInput{Name: args[0], Default: walletDefaultFlag}
	switch {
	case walletAddressFlag != "":
		in.Kind, in.Secret = wallet.TypeWatchOnly, walletAddressFlag
	case walletKeyFlag != "":
		in.Kind, in.Secret = wallet.TypeSigning, walletKeyFlag
	case ui.Interactive():
		key, err := keyring.TerminalPrompt("Private key (hidden)")
		if err != nil {
			return nil, err
		}
		in.Kind, in.Secret = wallet.TypeSigning, key
	default:
		return nil, errors.New("pass --key for a signing wallet or --address for a watch-only one")
	}
	if err := checkWalletSecret(in.Kind, in.Secret); err != nil {
		return nil, err
	}
	return in, nil
}

func checkWalletSecret(kind, secret string) error {
	if kind == wallet.TypeWatchOnly {
		return validate.ValidateAddress(secret, "").Err()
	}
	_, err := wallet.KeyAddress(secret)
	return err
}

func addWallet(mgr *wallet.Manager, in *ui.WalletInput) (*wallet.Wallet, error) {
	var err error
	if in.Kind == wallet.TypeWatchOnly {
		err = mgr.AddWatchOnly(in.Name, in.Secret)
	} else {
		err = mgr.AddWithKey(in.Name, in.Secret)
	}
	if err != nil {
		return nil, err
	}
	return mgr.Get(in.Name)
}

func useWallet(mgr *wallet.Manager, name string) error {
	if err := mgr.SetDefault(name); err != nil {
		return err
	}
	cfg.DefaultWallet = name
	return cfg.Save()
}

func walletTable(wallets []*wallet.Wallet) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Name", Width: 16},
		{Title: "Address", Width: 44},
		{Title: "Type", Width: 12},
		{Title: "Default", Width: 8},
	})
	for _, w := range wallets {
		def := ""
		if w.IsDefault || w.Name == cfg.DefaultWallet {
			def = ui.StyleSuccess.Render("✓")
		}
		t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address), ui.Meta(walletTypeLabel(w.Type)), def})
	}
	return t.Render()
}

func walletTypeLabel(t string) string {
	if t == wallet.TypeSigning {
		return "Signing"
	}
	return "Watch-only"
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key (signing wallet)")
	walletAddCmd.Flags().StringVar(&walletAddressFlag, "address", "", "address (watch-only wallet)")
	walletAddCmd.Flags().BoolVar(&walletDefaultFlag, "default", false, "make this the default wallet")
	walletRemoveCmd.Flags().BoolVarP(&walletYes, "yes", "y", false, "skip the confirmation prompt")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}
