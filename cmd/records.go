package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/baysim/core/model"
	"github.com/kilianp07/baysim/core/recordlog"
	"github.com/kilianp07/baysim/infra/postgres"
	"github.com/kilianp07/baysim/pkg/export"
)

var recordsFlags struct {
	backend string
	path    string
	run     string
	typ     string
	from    int
	to      int
	limit   int
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect stored output records",
}

var recordsQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print stored records as CSV",
	Args:  cobra.NoArgs,
	RunE:  queryRecords,
}

func init() {
	f := recordsQueryCmd.Flags()
	f.StringVar(&recordsFlags.backend, "backend", "sqlite", "store backend: sqlite, jsonl, rotating_jsonl or postgres")
	f.StringVar(&recordsFlags.path, "path", "", "store path, or DSN for postgres")
	f.StringVar(&recordsFlags.run, "run", "", "run ID")
	f.StringVar(&recordsFlags.typ, "type", "", "timestep type")
	f.IntVar(&recordsFlags.from, "from", 0, "first time index")
	f.IntVar(&recordsFlags.to, "to", 0, "last time index")
	f.IntVar(&recordsFlags.limit, "limit", 0, "maximum number of records")
	_ = recordsQueryCmd.MarkFlagRequired("path")
	recordsCmd.AddCommand(recordsQueryCmd)
	rootCmd.AddCommand(recordsCmd)
}

func openStore(ctx context.Context, backend, path string) (recordlog.Store, error) {
	if backend == "postgres" {
		return postgres.New(ctx, postgres.Config{DSN: path})
	}
	return recordlog.Open(backend, path)
}

func queryRecords(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := openStore(ctx, recordsFlags.backend, recordsFlags.path)
	if err != nil {
		return fmt.Errorf("open %s store: %w", recordsFlags.backend, err)
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Query(ctx, recordlog.Query{
		RunID:        recordsFlags.run,
		From:         recordsFlags.from,
		To:           recordsFlags.to,
		TimestepType: recordsFlags.typ,
		Limit:        recordsFlags.limit,
	})
	if err != nil {
		return err
	}
	recs := make([]model.OutputRecord, len(entries))
	for i, e := range entries {
		recs[i] = e.OutputRecord
	}
	return export.WriteCSV(cmd.OutOrStdout(), recs)
}
