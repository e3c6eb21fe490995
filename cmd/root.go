package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/log"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/tokendash/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	testnet     bool
	mainnet     bool
	networkFlag string
	walletFlag  string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "tokendash",
	Short: "ERC-20 token dashboard for the terminal",
	Long: `tokendash checks balances, approves, transfers and mints ERC-20 tokens,
and follows their Transfer and Approval events.

The built-in DAI and USDC test tokens live on Ethereum Sepolia, so the
default network mode is testnet. Override it per invocation with
--testnet or --mainnet, or persist it with:
  tokendash config set network_mode mainnet`,
	Version:       Version,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Setup(verbose)
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if mainnet {
			cfg.NetworkMode = "mainnet"
		}
		log.Debug("config loaded", "dir", cfg.Dir(), "network", cfg.DefaultNetwork, "mode", cfg.NetworkMode)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $TOKENDASH_CONFIG_DIR or ~/.tokendash)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use the chain's test network")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use the chain's main network")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "chain to connect to (default: config)")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet name (default: config)")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		balancesCmd,
		approveCmd,
		transferCmd,
		mintCmd,
		allowanceCmd,
		eventsCmd,
		dashboardCmd,
		validateCmd,
		walletCmd,
		networkCmd,
		rpcCmd,
		configCmd,
		tokenCmd,
	)
}
