package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/baysim/core/demand"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Independent bay demand profiles",
}

var profileDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the built-in profile as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return demand.WriteProfile(cmd.OutOrStdout(), demand.DefaultProfile())
	},
}

var profileValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a profile file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := demand.LoadProfile(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d buckets ok\n", args[0], len(p.Keys()))
		return err
	},
}

func init() {
	profileCmd.AddCommand(profileDefaultCmd, profileValidateCmd)
	rootCmd.AddCommand(profileCmd)
}
