// Package metrics defines the sinks that observe a simulation run. Sinks
// receive one StepEvent per timestep and, when they implement RunRecorder,
// a RunEvent at the end. Concrete sinks are registered by infra/metrics and
// built from configuration with NewMetricsSink, which wraps several sinks
// in a MultiSink. NewObserver plugs a sink into the simulation driver.
package metrics
