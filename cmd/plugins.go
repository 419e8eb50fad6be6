package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/baysim/app/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the available metrics sinks and record outputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "metrics: %s\noutputs: %s\n",
			strings.Join(plugins.MetricsSinks(), ", "), strings.Join(plugins.Outputs(), ", "))
		return err
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}
