package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage custom RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <chain> <url>",
	Short: "Add a custom RPC URL, tried before the built-in ones",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chainReg.GetByName(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q", err, args[0])
		}
		if err := cfg.AddRPC(c.Name, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(c.Name), args[1])))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <chain> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", args[0], args[1])))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [chain]",
	Short: "List the RPCs tried for a chain, in order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			networkFlag = args[0]
		}
		c, err := resolveChain()
		if err != nil {
			return err
		}

		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", c.NetworkName(cfg.NetworkMode))))
		env := strings.TrimSpace(os.Getenv(config.EnvRPCURL))
		custom := cfg.CustomRPCs[c.Name]
		for i, u := range endpointsFor(c) {
			source := "built-in"
			switch {
			case u == env:
				source = "$" + config.EnvRPCURL
			case slices.Contains(custom, u):
				source = "custom"
			}
			fmt.Printf("  %2d. %s %s\n", i+1, u, ui.Meta("("+source+")"))
		}
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd)
}
