package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var classifySep string

var classifyCmd = &cobra.Command{
	Use:   "classify <step>...",
	Short: "Print the timestep type of each step",
	Args:  cobra.MinimumNArgs(1),
	RunE:  classify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifySep, "sep", "-", "separator between season, day type and time of day")
	rootCmd.AddCommand(classifyCmd)
}

func classify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := cfg.SimConfig()
	if err != nil {
		return err
	}
	for _, a := range args {
		t, err := strconv.Atoi(a)
		if err != nil || t < 1 {
			return fmt.Errorf("invalid step %q", a)
		}
		b := sc.Calendar.Classify(t)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", t, b.Key(classifySep)); err != nil {
			return err
		}
	}
	return nil
}

