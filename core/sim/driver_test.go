package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/baysim/core/bay"
	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/demand"
	"github.com/kilianp07/baysim/core/model"
	"github.com/kilianp07/baysim/core/policy"
)

type captureLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *captureLogger) Debugf(string, ...any)         {}
func (l *captureLogger) Debugw(string, map[string]any) {}
func (l *captureLogger) Infof(string, ...any)          {}
func (l *captureLogger) Errorf(string, ...any)         {}
func (l *captureLogger) Warnf(f string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, fmt.Sprintf(f, args...))
	l.mu.Unlock()
}

// truckOnly forces a truck of the given duration at every check.
func truckOnly(duration int) demand.SharedQueueModel {
	m := demand.DefaultShared()
	m.TruckProb = demand.DayNight{Day: 1, Night: 1}
	m.CarProb = demand.DayNight{}
	m.TruckDurations = demand.NewChoice([]int{duration}, []float64{1})
	return m
}

func TestSingleBayDecrementThenReassign(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bays = 1
	cfg.Steps = 5
	cfg.Seed = 3
	cfg.Shared = truckOnly(3)

	var events []StepEvent
	d, err := New(cfg, WithObserver(StepObserverFunc(func(_ context.Context, ev StepEvent) error {
		events = append(events, ev)
		return nil
	})))
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Records, 5)

	for i, rec := range res.Records {
		assert.Equal(t, i+1, rec.TimeIndex)
		assert.Equal(t, []model.VehicleClass{model.ClassTruck}, rec.Bays, "t=%d", rec.TimeIndex)
		assert.Equal(t, 2.2, rec.TotalPowerMW)
	}
	require.Len(t, events, 5)
	assignedAt := []int{}
	for _, ev := range events {
		if len(ev.Outcome.Assignments) > 0 {
			assignedAt = append(assignedAt, ev.Record.TimeIndex)
		}
	}
	assert.Equal(t, []int{1, 4}, assignedAt)
	require.Len(t, res.InFlight, 1)
	// the queue head at t=4 is a truck that arrived at t=1
	assert.Equal(t, 1, res.InFlight[0].ArrivedAt)
	assert.Len(t, res.Pending, 48)
}

func TestSingleBayIndependent(t *testing.T) {
	p := demand.DefaultProfile()
	for k, bp := range p {
		bp.Arrival = demand.Arrival{Truck: 1}
		bp.Truck.Durations = []int{3}
		bp.Truck.Weights = []float64{1}
		p[k] = bp
	}
	cfg := DefaultConfig()
	cfg.Policy = policy.KindIndependent
	cfg.Bays = 1
	cfg.Steps = 5
	cfg.Profile = p

	d, err := New(cfg)
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	for _, rec := range res.Records {
		assert.Equal(t, 1, rec.TotalTrucks)
		assert.Equal(t, "winter_weekday_nighttime", rec.TimestepType)
	}
	assert.Empty(t, res.Pending)
	assert.Equal(t, 2, res.Assigned)
}

func TestSameSeedSameRecords(t *testing.T) {
	for _, kind := range []policy.Kind{policy.KindFCFS, policy.KindIndependent} {
		cfg := DefaultConfig()
		cfg.Policy = kind
		cfg.Steps = 2000
		cfg.Seed = 99

		run := func() *Result {
			d, err := New(cfg)
			require.NoError(t, err)
			res, err := d.Run(context.Background())
			require.NoError(t, err)
			return res
		}
		a, b := run(), run()
		assert.Equal(t, a.Records, b.Records, "policy %s", kind)
		assert.NotEqual(t, a.RunID, b.RunID)
	}
}

func TestFullYearFCFSConservation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 5
	d, err := New(cfg)
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Records, calendar.StepsPerYear)

	for i, rec := range res.Records {
		require.Equal(t, i+1, rec.TimeIndex)
		require.Len(t, rec.Bays, cfg.Bays)
		require.Equal(t, cfg.Bays, rec.Occupied()+rec.Empty())
		want := model.RoundMW(float64(rec.TotalTrucks)*2.2 + float64(rec.TotalCars)*0.22)
		require.InDelta(t, want, rec.TotalPowerMW, 1e-9, "t=%d", rec.TimeIndex)
	}
	assert.Equal(t, "winter-weekday-nighttime", res.Records[0].TimestepType)
	assert.Equal(t, res.Arrivals, res.Assigned+len(res.Pending))
	assert.Zero(t, res.Dropped)
}

func TestIndependentPowerWithinClassBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = policy.KindIndependent
	cfg.Steps = 3000
	d, err := New(cfg)
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	for _, rec := range res.Records {
		lo := float64(rec.TotalTrucks)*1.0 + float64(rec.TotalCars)*0.1
		hi := float64(rec.TotalTrucks)*2.0 + float64(rec.TotalCars)*0.25
		require.GreaterOrEqual(t, rec.TotalPowerMW, model.RoundMW(lo))
		require.LessOrEqual(t, rec.TotalPowerMW, model.RoundMW(hi))
	}
	assert.Equal(t, res.Arrivals, res.Assigned)
}

func TestPowerMatchesOccupations(t *testing.T) {
	for _, kind := range []policy.Kind{policy.KindIndependent, policy.KindFCFS} {
		t.Run(string(kind), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Policy = kind
			var occupied float64
			d, err := New(cfg, WithObserver(StepObserverFunc(func(_ context.Context, ev StepEvent) error {
				for _, a := range ev.Outcome.Assignments {
					steps := min(a.Request.Duration, cfg.Steps-ev.Record.TimeIndex+1)
					occupied += a.Request.PowerMW * float64(steps)
				}
				return nil
			})))
			require.NoError(t, err)
			res, err := d.Run(context.Background())
			require.NoError(t, err)

			var recorded float64
			for _, rec := range res.Records {
				recorded += rec.TotalPowerMW
			}
			require.Positive(t, recorded)
			assert.InDelta(t, occupied, recorded, 1e-6*float64(cfg.Steps))
		})
	}
}

func TestBoundedQueueReportsDrops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bays = 1
	cfg.Steps = 10
	cfg.Shared = truckOnly(3)
	cfg.QueueCapacity = 5
	d, err := New(cfg)
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Pending, 5)
	assert.Equal(t, res.Arrivals, res.Assigned+len(res.Pending)+res.Dropped)
}

func TestObserverErrorDoesNotAbort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 3
	log := &captureLogger{}
	d, err := New(cfg, WithLogger(log), WithObserver(StepObserverFunc(func(context.Context, StepEvent) error {
		return errors.New("sink down")
	})))
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)
	assert.Len(t, log.warns, 3)
}

type endRecorder struct {
	StepObserverFunc
	end *RunEvent
}

func (e *endRecorder) OnRunEnd(_ context.Context, ev RunEvent) error {
	e.end = &ev
	return nil
}

func TestRunEndObserver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 4
	rec := &endRecorder{StepObserverFunc: func(context.Context, StepEvent) error { return nil }}
	d, err := New(cfg, WithObserver(rec), WithRunID("fixed"))
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec.end)
	assert.Equal(t, "fixed", rec.end.RunID)
	assert.Equal(t, 4, rec.end.Steps)
	assert.NoError(t, rec.end.Err)
}

func TestCancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultConfig()
	cfg.Steps = 100
	d, err := New(cfg, WithObserver(StepObserverFunc(func(_ context.Context, ev StepEvent) error {
		if ev.Record.TimeIndex == 10 {
			cancel()
		}
		return nil
	})))
	require.NoError(t, err)
	res, err := d.Run(ctx)
	require.Error(t, err)
	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 11, se.Step)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, res.Records, 10)

	_, err = d.Run(context.Background())
	assert.Error(t, err, "second run must be rejected")
}

// doubleBooker assigns every request to bay 0, occupied or not.
type doubleBooker struct{}

func (doubleBooker) Name() string             { return "double" }
func (doubleBooker) Separator() string        { return "_" }
func (doubleBooker) Pending() []model.Request { return nil }
func (doubleBooker) Allocate(t int, _ calendar.Bucket, pool *bay.Pool) (policy.Outcome, error) {
	req := model.Request{Class: model.ClassCar, Duration: 2, PowerMW: 0.22, ArrivedAt: t}
	return policy.Outcome{}, pool.Assign(0, req)
}

func TestInvariantViolationAbortsWithStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 5
	d, err := New(cfg, WithPolicy(doubleBooker{}))
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvariantViolation)
	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Step)
	assert.Len(t, res.Records, 1)
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bays = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	cfg = DefaultConfig()
	cfg.Policy = "lottery"
	_, err = New(cfg)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	cfg = DefaultConfig()
	cfg.Policy = policy.KindIndependent
	delete(cfg.Profile, "summer_weekday_daytime")
	_, err = New(cfg)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}
