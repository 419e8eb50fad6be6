package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/baysim/app"
	"github.com/kilianp07/baysim/infra/logger"
)

var runFlags struct {
	policy   string
	seed     int64
	steps    int
	bays     int
	out      string
	format   string
	chart    string
	summary  bool
	progress bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a year of bay occupancy",
	RunE:  runSim,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.policy, "policy", "", "allocation policy: fcfs or independent")
	f.Int64Var(&runFlags.seed, "seed", 0, "random seed")
	f.IntVar(&runFlags.steps, "steps", 0, "number of 15 minute steps")
	f.IntVar(&runFlags.bays, "bays", 0, "number of charging bays")
	f.StringVarP(&runFlags.out, "out", "o", "", "export file path")
	f.StringVar(&runFlags.format, "format", "", "export format: csv, json or parquet")
	f.StringVar(&runFlags.chart, "chart", "", "write an HTML chart of the run to this path")
	f.BoolVar(&runFlags.summary, "summary", false, "print the per timestep type summary")
	f.BoolVar(&runFlags.progress, "progress", false, "show a progress bar")
	rootCmd.AddCommand(runCmd)
}

func runSim(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fl := cmd.Flags()
	if fl.Changed("policy") {
		cfg.Simulation.Policy = runFlags.policy
	}
	if fl.Changed("seed") {
		cfg.Simulation.Seed = runFlags.seed
	}
	if fl.Changed("steps") {
		cfg.Simulation.Steps = runFlags.steps
	}
	if fl.Changed("bays") {
		cfg.Simulation.Bays = runFlags.bays
	}
	if fl.Changed("out") {
		cfg.Export.Path = runFlags.out
		cfg.Export.Format = ""
	}
	if fl.Changed("format") {
		cfg.Export.Format = runFlags.format
	}
	if fl.Changed("chart") {
		cfg.Export.Chart = runFlags.chart
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var opts []app.Option
	if runFlags.summary {
		opts = append(opts, app.WithSummary(cmd.OutOrStdout()))
	}
	if runFlags.progress {
		opts = append(opts, app.WithProgress(cmd.ErrOrStderr()))
	}
	runner, err := app.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			logger.New("main").Errorf("runner close: %v", err)
		}
	}()
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d steps, %d arrivals, %d assigned, %d queued, %d plugged in\n",
		res.RunID, len(res.Records), res.Arrivals, res.Assigned, len(res.Pending), len(res.InFlight))
	return err
}
