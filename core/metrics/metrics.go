package metrics

import "time"

// StepEvent is the per-timestep view exported to metrics backends.
type StepEvent struct {
	RunID     string
	Policy    string
	TimeIndex int
	Bucket    string
	Trucks    int
	Cars      int
	Empty     int
	PowerMW   float64
	Arrivals  int
	Assigned  int
	QueueLen  int
	Dropped   int
	// Time is the simulated wall-clock instant of the step.
	Time time.Time
}

// RunEvent summarises a run.
type RunEvent struct {
	RunID    string
	Policy   string
	Steps    int
	Bays     int
	Pending  int
	InFlight int
	Dropped  int
	Elapsed  time.Duration
	Failed   bool
}

// MetricsSink records step events for observability purposes.
type MetricsSink interface {
	RecordStep(ev StepEvent) error
}

// RunRecorder is implemented by sinks that also record run summaries.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// Flusher is implemented by sinks that buffer writes.
type Flusher interface {
	Flush() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordStep(StepEvent) error { return nil }
func (NopSink) RecordRun(RunEvent) error   { return nil }

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStep forwards the event to all sinks, returning the first error
// encountered after every sink has been called.
func (m *MultiSink) RecordStep(ev StepEvent) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordStep(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordRun forwards run summaries to sinks implementing RunRecorder.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	var first error
	for _, s := range m.Sinks {
		if rr, ok := s.(RunRecorder); ok {
			if err := rr.RecordRun(ev); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// Flush flushes sinks implementing Flusher.
func (m *MultiSink) Flush() error {
	var first error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
