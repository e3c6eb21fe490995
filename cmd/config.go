package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.KeyValueBlock("Configuration", configPairs(cfg)))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Keys: ` + strings.Join(config.Keys(), ", ") + `

Examples:
  tokendash config set network_mode testnet
  tokendash config set rpc_algorithm failover
  tokendash config set watch_interval 5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == "default_network" {
			if _, err := chainReg.GetByName(value); err != nil {
				return fmt.Errorf("%w: %q", err, value)
			}
		}
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s = %s", key, value)))
		return nil
	},
}

// configPairs lists every scalar key plus counts of the list settings.
func configPairs(c *config.Config) [][2]string {
	var pairs [][2]string
	for _, k := range config.Keys() {
		v, _ := c.Get(k)
		if v == "" {
			v = ui.Meta("(unset)")
		}
		pairs = append(pairs, [2]string{k, v})
	}
	rpcs := 0
	for _, urls := range c.CustomRPCs {
		rpcs += len(urls)
	}
	pairs = append(pairs,
		[2]string{"custom_rpcs", fmt.Sprintf("%d", rpcs)},
		[2]string{"tokens", fmt.Sprintf("%d custom", len(c.Tokens))},
	)
	return pairs
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
