package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/baysim/core/metrics"
)

// PromSink exposes step events as Prometheus metrics.
type PromSink struct {
	occupied *prometheus.GaugeVec
	power    *prometheus.GaugeVec
	queue    *prometheus.GaugeVec
	arrivals *prometheus.CounterVec
	assigned *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	stepMW   *prometheus.HistogramVec
	runs     *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		occupied: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baysim_bays_occupied",
			Help: "Bays held by each vehicle class at the last step",
		}, []string{"policy", "class"}),
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baysim_power_mw",
			Help: "Total installed charging power at the last step",
		}, []string{"policy"}),
		queue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baysim_queue_length",
			Help: "Vehicles waiting after allocation at the last step",
		}, []string{"policy"}),
		arrivals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "baysim_arrivals_total",
			Help: "Vehicles that arrived",
		}, []string{"policy"}),
		assigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "baysim_assignments_total",
			Help: "Vehicles installed in a bay",
		}, []string{"policy"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "baysim_dropped_total",
			Help: "Vehicles discarded by a full queue",
		}, []string{"policy"}),
		stepMW: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "baysim_step_power_mw",
			Help:    "Distribution of total power per step",
			Buckets: prometheus.LinearBuckets(0, 2.5, 10),
		}, []string{"policy"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "baysim_runs_total",
			Help: "Completed runs by status",
		}, []string{"policy", "status"}),
	}
	var err error
	if s.occupied, err = register(reg, s.occupied); err != nil {
		return nil, err
	}
	if s.power, err = register(reg, s.power); err != nil {
		return nil, err
	}
	if s.queue, err = register(reg, s.queue); err != nil {
		return nil, err
	}
	if s.arrivals, err = register(reg, s.arrivals); err != nil {
		return nil, err
	}
	if s.assigned, err = register(reg, s.assigned); err != nil {
		return nil, err
	}
	if s.dropped, err = register(reg, s.dropped); err != nil {
		return nil, err
	}
	if s.stepMW, err = register(reg, s.stepMW); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordStep updates gauges and counters from one step.
func (s *PromSink) RecordStep(ev coremetrics.StepEvent) error {
	s.occupied.WithLabelValues(ev.Policy, "truck").Set(float64(ev.Trucks))
	s.occupied.WithLabelValues(ev.Policy, "car").Set(float64(ev.Cars))
	s.occupied.WithLabelValues(ev.Policy, "empty").Set(float64(ev.Empty))
	s.power.WithLabelValues(ev.Policy).Set(ev.PowerMW)
	s.queue.WithLabelValues(ev.Policy).Set(float64(ev.QueueLen))
	s.arrivals.WithLabelValues(ev.Policy).Add(float64(ev.Arrivals))
	s.assigned.WithLabelValues(ev.Policy).Add(float64(ev.Assigned))
	s.dropped.WithLabelValues(ev.Policy).Add(float64(ev.Dropped))
	s.stepMW.WithLabelValues(ev.Policy).Observe(ev.PowerMW)
	return nil
}

// RecordRun counts the run by status.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	status := "ok"
	if ev.Failed {
		status = "failed"
	}
	s.runs.WithLabelValues(ev.Policy, status).Inc()
	return nil
}
