package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/baysim/core/bay"
	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/demand"
	"github.com/kilianp07/baysim/core/logger"
	"github.com/kilianp07/baysim/core/model"
	"github.com/kilianp07/baysim/core/policy"
	"github.com/kilianp07/baysim/core/queue"
)

// StepError attaches the failing step to an error that aborted a run.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %d: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// Result is the outcome of a full run. Pending and InFlight hold demand
// that was still waiting or plugged in after the last step; it is reported
// here and never folded into Records.
type Result struct {
	RunID     string
	Policy    string
	Seed      int64
	Bays      int
	StartedAt time.Time
	Elapsed   time.Duration
	Records   []model.OutputRecord
	Pending   []model.Request
	InFlight  []model.Request
	Arrivals  int
	Assigned  int
	Dropped   int
}

// Option customises a Driver.
type Option func(*Driver)

// WithSource replaces the seeded random source.
func WithSource(src demand.Source) Option {
	return func(d *Driver) { d.src = src }
}

// WithObserver adds a step observer.
func WithObserver(o StepObserver) Option {
	return func(d *Driver) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithPolicy replaces the policy built from the config.
func WithPolicy(p policy.Policy) Option {
	return func(d *Driver) { d.policy = p }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(d *Driver) { d.runID = id }
}

// Driver owns the bay pool and the policy of one run.
type Driver struct {
	cfg       Config
	pool      *bay.Pool
	policy    policy.Policy
	src       demand.Source
	log       logger.Logger
	observers []StepObserver
	runID     string
	ran       bool
}

// New validates cfg and prepares a driver.
func New(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := bay.New(cfg.Bays)
	if err != nil {
		return nil, err
	}
	d := &Driver{cfg: cfg, pool: pool, log: logger.NopLogger{}}
	for _, o := range opts {
		o(d)
	}
	if d.src == nil {
		d.src = demand.NewSource(cfg.Seed)
	}
	if d.runID == "" {
		d.runID = uuid.New().String()
	}
	if d.policy == nil {
		p, err := buildPolicy(cfg, d.src)
		if err != nil {
			return nil, err
		}
		d.policy = p
	}
	return d, nil
}

func buildPolicy(cfg Config, src demand.Source) (policy.Policy, error) {
	switch cfg.Policy {
	case policy.KindIndependent:
		m, err := demand.NewIndependentModel(cfg.Profile)
		if err != nil {
			return nil, err
		}
		p := policy.NewIndependent(m, src)
		if cfg.Separator != "" {
			p.WithSeparator(cfg.Separator)
		}
		return p, nil
	default:
		q := queue.New()
		if cfg.QueueCapacity > 0 {
			var err error
			q, err = queue.NewBounded(cfg.QueueCapacity, cfg.DropPolicy)
			if err != nil {
				return nil, err
			}
		}
		p := policy.NewFCFS(cfg.Shared, src, q)
		if cfg.Separator != "" {
			p.WithSeparator(cfg.Separator)
		}
		return p, nil
	}
}

// RunID returns the identifier attached to records and events.
func (d *Driver) RunID() string { return d.runID }

// Policy returns the active policy.
func (d *Driver) Policy() policy.Policy { return d.policy }

// Step executes timestep t and returns its record. Steps must be called
// with increasing t starting at 1.
func (d *Driver) Step(t int) (model.OutputRecord, StepEvent, error) {
	b := d.cfg.Calendar.Classify(t)
	d.pool.Tick()
	if err := d.pool.CheckInvariants(); err != nil {
		return model.OutputRecord{}, StepEvent{}, fmt.Errorf("after tick: %w", err)
	}
	out, err := d.policy.Allocate(t, b, d.pool)
	if err != nil {
		return model.OutputRecord{}, StepEvent{}, fmt.Errorf("allocate: %w", err)
	}
	if err := d.pool.CheckInvariants(); err != nil {
		return model.OutputRecord{}, StepEvent{}, fmt.Errorf("after allocate: %w", err)
	}
	rec := d.record(t, b)
	ev := StepEvent{RunID: d.runID, Policy: d.policy.Name(), Bucket: b, Record: rec, Outcome: out}
	return rec, ev, nil
}

func (d *Driver) record(t int, b calendar.Bucket) model.OutputRecord {
	trucks, cars := d.pool.Counts()
	return model.OutputRecord{
		TimeIndex:    t,
		Bays:         d.pool.Snapshot(),
		TotalTrucks:  trucks,
		TotalCars:    cars,
		TotalPowerMW: d.pool.TotalPowerMW(),
		TimestepType: b.Key(d.policy.Separator()),
	}
}

// Run executes steps 1..Steps. A driver runs once; any step error or context
// cancellation aborts the run and returns the records produced so far.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	if d.ran {
		return nil, errors.New("driver already ran")
	}
	d.ran = true
	res := &Result{
		RunID:     d.runID,
		Policy:    d.policy.Name(),
		Seed:      d.cfg.Seed,
		Bays:      d.cfg.Bays,
		StartedAt: time.Now(),
		Records:   make([]model.OutputRecord, 0, d.cfg.Steps),
	}
	d.log.Infof("run %s: %s policy, %d bays, %d steps, seed %d", d.runID, res.Policy, d.cfg.Bays, d.cfg.Steps, d.cfg.Seed)

	var runErr error
	for t := 1; t <= d.cfg.Steps; t++ {
		if err := ctx.Err(); err != nil {
			runErr = &StepError{Step: t, Err: err}
			break
		}
		rec, ev, err := d.Step(t)
		if err != nil {
			runErr = &StepError{Step: t, Err: err}
			break
		}
		res.Records = append(res.Records, rec)
		res.Arrivals += ev.Outcome.Arrivals
		res.Assigned += len(ev.Outcome.Assignments)
		res.Dropped += ev.Outcome.Dropped
		d.notify(ctx, ev)
	}

	res.Pending = d.policy.Pending()
	res.InFlight = d.pool.Occupied()
	res.Elapsed = time.Since(res.StartedAt)
	d.notifyEnd(ctx, res, runErr)

	if runErr != nil {
		d.log.Errorf("run %s aborted: %v", d.runID, runErr)
		return res, runErr
	}
	d.log.Infof("run %s done in %s: %d records, %d pending, %d in flight",
		d.runID, res.Elapsed, len(res.Records), len(res.Pending), len(res.InFlight))
	return res, nil
}

func (d *Driver) notify(ctx context.Context, ev StepEvent) {
	for _, o := range d.observers {
		if err := o.OnStep(ctx, ev); err != nil {
			d.log.Warnf("observer at step %d: %v", ev.Record.TimeIndex, err)
		}
	}
}

func (d *Driver) notifyEnd(ctx context.Context, res *Result, runErr error) {
	ev := RunEvent{
		RunID:    res.RunID,
		Policy:   res.Policy,
		Steps:    len(res.Records),
		Bays:     res.Bays,
		Elapsed:  res.Elapsed,
		Pending:  len(res.Pending),
		InFlight: len(res.InFlight),
		Dropped:  res.Dropped,
		Err:      runErr,
	}
	for _, o := range d.observers {
		ro, ok := o.(RunObserver)
		if !ok {
			continue
		}
		if err := ro.OnRunEnd(ctx, ev); err != nil {
			d.log.Warnf("observer at run end: %v", err)
		}
	}
}
