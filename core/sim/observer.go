package sim

import (
	"context"
	"time"

	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/model"
	"github.com/kilianp07/baysim/core/policy"
)

// StepEvent describes one completed step.
type StepEvent struct {
	RunID   string
	Policy  string
	Bucket  calendar.Bucket
	Record  model.OutputRecord
	Outcome policy.Outcome
}

// RunEvent summarises a finished or aborted run.
type RunEvent struct {
	RunID    string
	Policy   string
	Steps    int
	Bays     int
	Elapsed  time.Duration
	Pending  int
	InFlight int
	Dropped  int
	Err      error
}

// StepObserver is notified after every step. Observers only report: an
// error is logged and the run continues.
type StepObserver interface {
	OnStep(ctx context.Context, ev StepEvent) error
}

// RunObserver is optionally implemented by observers interested in the end
// of the run.
type RunObserver interface {
	OnRunEnd(ctx context.Context, ev RunEvent) error
}

// StepObserverFunc adapts a function to StepObserver.
type StepObserverFunc func(ctx context.Context, ev StepEvent) error

func (f StepObserverFunc) OnStep(ctx context.Context, ev StepEvent) error { return f(ctx, ev) }
