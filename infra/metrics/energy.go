package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/baysim/core/metrics"
	"github.com/kilianp07/baysim/core/metrics/energy"
)

// EnergySink aggregates daily charging energy and exposes it as gauges.
type EnergySink struct {
	store     energy.Store
	factor    float64
	energyMWh *prometheus.GaugeVec
	peakMW    *prometheus.GaugeVec
	load      *prometheus.GaugeVec
	co2       *prometheus.GaugeVec
}

// NewEnergySink creates a sink with gauges registered on reg. factor is
// the grid emission factor in g CO2 per kWh.
func NewEnergySink(store energy.Store, factor float64, reg prometheus.Registerer) (*EnergySink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if store == nil {
		store = energy.NewMemoryStore()
	}
	labels := []string{"run_id", "day"}
	s := &EnergySink{
		store:  store,
		factor: factor,
		energyMWh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baysim_daily_energy_mwh",
			Help: "Charging energy delivered per simulated day",
		}, labels),
		peakMW: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baysim_daily_peak_mw",
			Help: "Highest step power per simulated day",
		}, labels),
		load: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baysim_daily_load_factor",
			Help: "Average to peak power ratio per simulated day",
		}, labels),
		co2: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baysim_daily_emissions_kg",
			Help: "Grid emissions of the delivered energy per simulated day",
		}, labels),
	}
	var err error
	for _, g := range []**prometheus.GaugeVec{&s.energyMWh, &s.peakMW, &s.load, &s.co2} {
		if *g, err = register(reg, *g); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RecordStep adds the step energy to its day and refreshes the gauges.
func (s *EnergySink) RecordStep(ev coremetrics.StepEvent) error {
	rec := energy.Record{
		RunID:     ev.RunID,
		Date:      ev.Time,
		EnergyMWh: ev.PowerMW * coremetrics.StepDuration.Hours(),
		PeakMW:    ev.PowerMW,
		Steps:     1,
	}
	if err := s.store.Add(rec); err != nil {
		return err
	}
	records, err := s.store.Query(ev.RunID, ev.Time, ev.Time)
	if err != nil || len(records) == 0 {
		return err
	}
	day := records[0]
	dayStr := day.Date.Format("2006-01-02")
	s.energyMWh.WithLabelValues(ev.RunID, dayStr).Set(round3(day.EnergyMWh))
	s.peakMW.WithLabelValues(ev.RunID, dayStr).Set(day.PeakMW)
	s.load.WithLabelValues(ev.RunID, dayStr).Set(round3(day.LoadFactor(coremetrics.StepDuration)))
	s.co2.WithLabelValues(ev.RunID, dayStr).Set(round3(day.EmissionsKg(s.factor)))
	return nil
}

// Store returns the underlying store.
func (s *EnergySink) Store() energy.Store { return s.store }
