package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/rpc"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "List chains and check RPC health",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(networkTable(chainReg.All(), config.TestnetsEnabled()))
		fmt.Println(ui.Meta(fmt.Sprintf("%d chains · default %s (%s)", len(chainReg.All()), cfg.DefaultNetwork, cfg.NetworkMode)))
		return nil
	},
}

var networkStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe every RPC of the selected chain",
	Long: `Ping every configured RPC of the selected chain in the current mode and
show latency, head block and which endpoint the selection algorithm picks.

Examples:
  tokendash network status
  tokendash network status --network base --mainnet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveChain()
		if err != nil {
			return err
		}
		if cfg.IsTestnet() && !config.TestnetsEnabled() {
			return fmt.Errorf("testnets are disabled by $%s, use --mainnet", config.EnvEnableTestnets)
		}
		urls := endpointsFor(c)
		if len(urls) == 0 {
			return fmt.Errorf("no RPCs configured for %s (%s)", c.Name, cfg.NetworkMode)
		}

		spin := ui.NewSpinner(fmt.Sprintf("Probing %d RPCs for %s...", len(urls), ui.ChainName(c.NetworkName(cfg.NetworkMode))))
		spin.Start()
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		endpoints := rpc.ProbeAll(ctx, urls, c.ID(cfg.NetworkMode))
		cancel()
		spin.Stop()

		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}
		selected := ""
		if winner, err := rpc.Pick(endpoints, algo); err == nil {
			selected = winner.URL
		}

		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("%s · chain %d · %s", c.NetworkName(cfg.NetworkMode), c.ID(cfg.NetworkMode), algo)))
		fmt.Println(endpointTable(endpoints, selected))
		if selected == "" {
			return rpc.ErrNoHealthyRPC
		}
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <chain>",
	Short: "Set the default chain",
	Long: `Set the default chain. With --testnet or --mainnet the network mode is
persisted as well.

Examples:
  tokendash network use ethereum --testnet
  tokendash network use base`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chainReg.GetByName(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q (run 'tokendash network list')", err, args[0])
		}
		cfg.DefaultNetwork = c.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s", ui.ChainName(c.NetworkName(cfg.NetworkMode)))))
		return nil
	},
}

func networkTable(chains []chain.Chain, testnets bool) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Name", Width: 10},
		{Title: "Display", Width: 10},
		{Title: "Chain ID", Width: 9, Right: true},
		{Title: "Currency", Width: 8},
		{Title: "Testnet", Width: 18},
		{Title: "Testnet ID", Width: 10, Right: true},
	})
	for _, c := range chains {
		testnet, testnetID := "—", "—"
		if testnets && c.TestnetChainID != 0 {
			testnet, testnetID = c.TestnetName, fmt.Sprintf("%d", c.TestnetChainID)
		}
		t.AddRow(ui.Row{
			ui.ChainName(c.Name),
			c.DisplayName,
			fmt.Sprintf("%d", c.ChainID),
			c.NativeCurrency,
			testnet,
			testnetID,
		})
	}
	return t.Render()
}

func endpointTable(endpoints []rpc.Endpoint, selected string) string {
	t := ui.NewTable([]ui.Column{
		{Title: "", Width: 1},
		{Title: "RPC URL", Width: 44},
		{Title: "Latency", Width: 9, Right: true},
		{Title: "Block", Width: 10, Right: true},
		{Title: "Status", Width: 28},
	})
	for _, e := range endpoints {
		mark := ""
		if e.URL == selected {
			mark = ui.StyleSuccess.Render("›")
		}
		latency, block, status := "—", "—", ui.StyleSuccess.Render("healthy")
		if e.Healthy() {
			latency = fmt.Sprintf("%dms", e.Latency.Milliseconds())
			block = fmt.Sprintf("%d", e.BlockNumber)
		} else {
			status = ui.StyleError.Render(e.Err.Error())
		}
		t.AddRow(ui.Row{mark, e.URL, latency, block, status})
	}
	return t.Render()
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkStatusCmd, networkUseCmd)
}
