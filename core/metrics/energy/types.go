// Package energy aggregates charging energy per simulated day.
package energy

import "time"

// Record aggregates the load of one run over one day.
type Record struct {
	RunID     string
	Date      time.Time
	EnergyMWh float64
	PeakMW    float64
	Steps     int
}

// AverageMW returns the mean power over the recorded steps.
func (r Record) AverageMW(step time.Duration) float64 {
	if r.Steps == 0 {
		return 0
	}
	return r.EnergyMWh / (float64(r.Steps) * step.Hours())
}

// LoadFactor returns the average to peak power ratio, 0 when idle.
func (r Record) LoadFactor(step time.Duration) float64 {
	if r.PeakMW == 0 {
		return 0
	}
	return r.AverageMW(step) / r.PeakMW
}

// EmissionsKg returns the grid emissions in kilograms given a factor in
// grams of CO2 per kWh. One MWh at 1 g/kWh is 1 kg.
func (r Record) EmissionsKg(gramsPerKWh float64) float64 {
	return r.EnergyMWh * gramsPerKWh
}
