package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/baysim/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "baysim",
	Short:         "EV charging bay occupancy simulator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
