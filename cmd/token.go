package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	tokenDecimals int
	tokenChainID  int64
	tokenMintable bool
	tokenColor    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the token list",
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and custom tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := token.NewRegistry(cfg.Tokens)
		if err != nil {
			return err
		}
		fmt.Println(tokenTable(reg.All()))
		return nil
	},
}

var tokenAddCmd = &cobra.Command{
	Use:   "add <symbol> <address>",
	Short: "Add a custom ERC-20 token",
	Long: `Add a token to config.json. Without --decimals the value is read from the
contract on the selected chain.

Examples:
  tokendash token add LINK 0x779877A7B0D9E8603169DdbD7836e478b4624789 --testnet
  tokendash token add WETH 0x4200...0006 --decimals 18 --chain-id 8453`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := token.Spec{
			Symbol:   args[0],
			Address:  args[1],
			ChainID:  tokenChainID,
			Color:    tokenColor,
			Mintable: tokenMintable,
		}
		if _, err := spec.Token(); err != nil {
			return err
		}

		c, err := resolveChain()
		if err != nil {
			return err
		}
		if spec.ChainID == 0 {
			spec.ChainID = c.ID(cfg.NetworkMode)
		}

		if tokenDecimals > 255 {
			return fmt.Errorf("--decimals must be at most 255, got %d", tokenDecimals)
		}
		if tokenDecimals >= 0 {
			spec.Decimals = uint8(tokenDecimals)
		} else {
			if spec.ChainID != c.ID(cfg.NetworkMode) {
				return fmt.Errorf("--decimals is required for tokens on another chain than %s", c.NetworkName(cfg.NetworkMode))
			}
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()
			reader := contract.NewReader(sess.client)
			addr := common.HexToAddress(spec.Address)
			dec, err := reader.Decimals(cmd.Context(), addr)
			if err != nil {
				return fmt.Errorf("reading decimals: %w", err)
			}
			spec.Decimals = dec
			if sym, err := reader.Symbol(cmd.Context(), addr); err == nil && !strings.EqualFold(sym, spec.Symbol) {
				fmt.Println(ui.Warn(fmt.Sprintf("contract reports symbol %q", sym)))
			}
		}

		cfg.Tokens = upsertToken(cfg.Tokens, spec)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Token %s added (%d decimals, chain %d)", strings.ToUpper(spec.Symbol), spec.Decimals, spec.ChainID)))
		return nil
	},
}

var tokenRemoveCmd = &cobra.Command{
	Use:   "remove <symbol>",
	Short: "Remove a custom token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rest, ok := removeToken(cfg.Tokens, args[0])
		if !ok {
			return fmt.Errorf("%w: %s is not a custom token", token.ErrTokenNotFound, args[0])
		}
		cfg.Tokens = rest
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Token %s removed.", strings.ToUpper(args[0]))))
		return nil
	},
}

// upsertToken replaces the spec with the same symbol, or appends.
func upsertToken(specs []token.Spec, s token.Spec) []token.Spec {
	for i := range specs {
		if strings.EqualFold(specs[i].Symbol, s.Symbol) {
			specs[i] = s
			return specs
		}
	}
	return append(specs, s)
}

func removeToken(specs []token.Spec, symbol string) ([]token.Spec, bool) {
	for i := range specs {
		if strings.EqualFold(specs[i].Symbol, symbol) {
			return append(specs[:i:i], specs[i+1:]...), true
		}
	}
	return specs, false
}

func tokenTable(toks []token.Token) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Symbol", Width: 8},
		{Title: "Address", Width: 44},
		{Title: "Decimals", Width: 8, Right: true},
		{Title: "Network", Width: 20},
		{Title: "Mint", Width: 4},
	})
	for _, tok := range toks {
		network := fmt.Sprintf("chain %d", tok.ChainID)
		if c, err := chainReg.GetByChainID(tok.ChainID); err == nil {
			mode := "mainnet"
			if c.TestnetChainID == tok.ChainID {
				mode = "testnet"
			}
			network = c.NetworkName(mode)
		}
		mint := ""
		if tok.Mintable {
			mint = ui.StyleSuccess.Render("✓")
		}
		t.AddRow(ui.Row{
			ui.TokenSymbol(tok.Symbol, tok.Color),
			ui.Addr(tok.Address.Hex()),
			fmt.Sprintf("%d", tok.Decimals),
			ui.ChainName(network),
			mint,
		})
	}
	return t.Render()
}

func init() {
	tokenAddCmd.Flags().IntVar(&tokenDecimals, "decimals", -1, "token decimals (default: read from the contract)")
	tokenAddCmd.Flags().Int64Var(&tokenChainID, "chain-id", 0, "chain the token lives on (default: selected chain)")
	tokenAddCmd.Flags().BoolVar(&tokenMintable, "mintable", false, "token exposes a public mint(address,uint256)")
	tokenAddCmd.Flags().StringVar(&tokenColor, "color", "", "hex colour for the dashboard, e.g. #F5AC37")
	tokenCmd.AddCommand(tokenListCmd, tokenAddCmd, tokenRemoveCmd)
}
