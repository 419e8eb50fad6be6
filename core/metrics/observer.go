package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/baysim/core/sim"
)

// StepDuration is the simulated length of one timestep.
const StepDuration = 15 * time.Minute

// Observer feeds simulation events to a sink. Step t is stamped at
// origin + t*StepDuration.
type Observer struct {
	sink   MetricsSink
	origin time.Time
}

// NewObserver wraps sink for use with sim.WithObserver.
func NewObserver(sink MetricsSink, origin time.Time) *Observer {
	if sink == nil {
		sink = NopSink{}
	}
	return &Observer{sink: sink, origin: origin}
}

// OnStep implements sim.StepObserver.
func (o *Observer) OnStep(_ context.Context, ev sim.StepEvent) error {
	rec := ev.Record
	return o.sink.RecordStep(StepEvent{
		RunID:     ev.RunID,
		Policy:    ev.Policy,
		TimeIndex: rec.TimeIndex,
		Bucket:    ev.Bucket.String(),
		Trucks:    rec.TotalTrucks,
		Cars:      rec.TotalCars,
		Empty:     rec.Empty(),
		PowerMW:   rec.TotalPowerMW,
		Arrivals:  ev.Outcome.Arrivals,
		Assigned:  len(ev.Outcome.Assignments),
		QueueLen:  ev.Outcome.QueueLen,
		Dropped:   ev.Outcome.Dropped,
		Time:      o.origin.Add(time.Duration(rec.TimeIndex) * StepDuration),
	})
}

// OnRunEnd implements sim.RunObserver.
func (o *Observer) OnRunEnd(_ context.Context, ev sim.RunEvent) error {
	if f, ok := o.sink.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	rr, ok := o.sink.(RunRecorder)
	if !ok {
		return nil
	}
	return rr.RecordRun(RunEvent{
		RunID:    ev.RunID,
		Policy:   ev.Policy,
		Steps:    ev.Steps,
		Bays:     ev.Bays,
		Pending:  ev.Pending,
		InFlight: ev.InFlight,
		Dropped:  ev.Dropped,
		Elapsed:  ev.Elapsed,
		Failed:   ev.Err != nil,
	})
}
