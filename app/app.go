// Package app wires configuration, logging, monitoring, metrics and record
// outputs around a simulation driver.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kilianp07/baysim/app/plugins"
	"github.com/kilianp07/baysim/config"
	coremetrics "github.com/kilianp07/baysim/core/metrics"
	coremon "github.com/kilianp07/baysim/core/monitoring"
	"github.com/kilianp07/baysim/core/recordlog"
	"github.com/kilianp07/baysim/core/report"
	"github.com/kilianp07/baysim/core/sim"
	"github.com/kilianp07/baysim/infra/logger"
	inframetrics "github.com/kilianp07/baysim/infra/metrics"
	inframon "github.com/kilianp07/baysim/infra/monitoring"
	"github.com/kilianp07/baysim/pkg/export"
)

// appendBatch bounds the number of records handed to a writer at once.
const appendBatch = 1000

// Uploader sends an export file to object storage.
type Uploader interface {
	Upload(ctx context.Context, bucket, key, path string) error
}

// Option customises a Runner.
type Option func(*Runner)

// WithProgress draws a progress bar on w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) { r.progress = w }
}

// WithSummary prints the per bucket summary table to w after the run.
func WithSummary(w io.Writer) Option {
	return func(r *Runner) { r.summary = w }
}

// WithUploader replaces the S3 uploader built from the configuration.
func WithUploader(u Uploader) Option {
	return func(r *Runner) { r.uploader = u }
}

// WithDriverOptions passes extra options to the simulation driver.
func WithDriverOptions(opts ...sim.Option) Option {
	return func(r *Runner) { r.driverOpts = append(r.driverOpts, opts...) }
}

// Runner executes one configured simulation run.
type Runner struct {
	cfg        *config.Config
	log        logger.Logger
	driver     *sim.Driver
	sink       coremetrics.MetricsSink
	writers    *recordlog.MultiWriter
	uploader   Uploader
	progress   io.Writer
	summary    io.Writer
	origin     time.Time
	driverOpts []sim.Option
}

// New builds the runner and everything it depends on.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetConsole(cfg.Logging.Console)
	log := logger.New("runner")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	r := &Runner{cfg: cfg, log: log}
	for _, o := range opts {
		o(r)
	}
	log.Debugw("plugins", map[string]any{"metrics": plugins.MetricsSinks(), "outputs": plugins.Outputs()})

	simCfg, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}
	origin, err := cfg.Simulation.OriginTime()
	if err != nil {
		return nil, err
	}
	r.origin = origin
	r.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	r.writers, err = recordlog.NewWriters(cfg.Outputs)
	if err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}

	dopts := []sim.Option{
		sim.WithLogger(logger.New("sim")),
		sim.WithObserver(coremetrics.NewObserver(r.sink, origin)),
	}
	if r.progress != nil {
		dopts = append(dopts, sim.WithObserver(newProgressObserver(r.progress, simCfg.Steps)))
	}
	dopts = append(dopts, r.driverOpts...)
	r.driver, err = sim.New(simCfg, dopts...)
	if err != nil {
		_ = r.writers.Close()
		return nil, err
	}
	return r, nil
}

// RunID returns the identifier of the run.
func (r *Runner) RunID() string { return r.driver.RunID() }

// Run executes the simulation, persists the records and writes the export.
// Failures are reported to the monitor before being returned.
func (r *Runner) Run(ctx context.Context) (*sim.Result, error) {
	if addr := r.cfg.Metrics.PrometheusAddr; addr != "" {
		srvCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := inframetrics.StartPromServer(srvCtx, addr); err != nil {
				r.log.Errorf("prom server: %v", err)
			}
		}()
	}

	res, err := r.driver.Run(ctx)
	if err != nil {
		r.capture(err, "simulate")
		return res, err
	}
	if len(res.Pending) > 0 || len(res.InFlight) > 0 {
		r.log.Infof("leftover demand: %d queued, %d still plugged in", len(res.Pending), len(res.InFlight))
	}

	if r.writers.Len() > 0 {
		if err := recordlog.AppendBatched(ctx, r.writers, res.RunID, res.Records, appendBatch); err != nil {
			err = fmt.Errorf("append records: %w", err)
			r.capture(err, "outputs")
			return res, err
		}
		r.log.Infof("appended %d records to %d outputs", len(res.Records), r.writers.Len())
	}
	if err := r.export(ctx, res); err != nil {
		r.capture(err, "export")
		return res, err
	}
	if err := r.chart(res); err != nil {
		r.capture(err, "chart")
		return res, err
	}
	if r.summary != nil {
		if err := report.WriteTable(r.summary, report.Summarize(res.Records)); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (r *Runner) export(ctx context.Context, res *sim.Result) error {
	ec := r.cfg.Export
	if ec.Path == "" {
		return nil
	}
	f, err := export.ParseFormat(ec.Format)
	if err != nil {
		return err
	}
	if err := export.WriteFile(ec.Path, f, res.Records); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	r.log.Infof("exported %d records to %s", len(res.Records), ec.Path)
	if !ec.S3.Enabled() {
		return nil
	}
	if r.uploader == nil {
		u, err := export.NewS3Uploader(ctx, export.S3Options{
			Region:       ec.S3.Region,
			Endpoint:     ec.S3.Endpoint,
			UsePathStyle: ec.S3.UsePathStyle,
		})
		if err != nil {
			return err
		}
		r.uploader = u
	}
	if err := r.uploader.Upload(ctx, ec.S3.Bucket, ec.S3.Key, ec.Path); err != nil {
		return err
	}
	r.log.Infof("uploaded %s to s3://%s/%s", ec.Path, ec.S3.Bucket, ec.S3.Key)
	return nil
}

func (r *Runner) chart(res *sim.Result) error {
	path := r.cfg.Export.Chart
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteChart(f, res.Records, r.origin); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.log.Infof("chart written to %s", path)
	return nil
}

func (r *Runner) capture(err error, stage string) {
	tags := map[string]string{
		"run_id": r.driver.RunID(),
		"policy": r.driver.Policy().Name(),
		"stage":  stage,
	}
	var se *sim.StepError
	if errors.As(err, &se) {
		tags["step"] = strconv.Itoa(se.Step)
	}
	coremon.CaptureException(err, tags)
}

// Close releases the outputs and sinks and flushes the monitor.
func (r *Runner) Close() error {
	var errs []error
	if r.writers != nil {
		errs = append(errs, r.writers.Close())
	}
	if c, ok := r.sink.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
