package demand

import (
	"fmt"

	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/model"
)

// DayNight holds a value per time of day.
type DayNight struct {
	Day   float64 `json:"day" yaml:"day"`
	Night float64 `json:"night" yaml:"night"`
}

func (d DayNight) at(tod calendar.TimeOfDay) float64 {
	if tod == calendar.Daytime {
		return d.Day
	}
	return d.Night
}

// SeasonFactor scales a probability per season.
type SeasonFactor struct {
	Summer float64 `json:"summer" yaml:"summer"`
	Winter float64 `json:"winter" yaml:"winter"`
}

func (s SeasonFactor) at(season calendar.Season) float64 {
	if season == calendar.Summer {
		return s.Summer
	}
	return s.Winter
}

// SharedQueueModel generates arrivals for a single shared queue. Each step
// runs Checks rounds; a round tries one truck then one car.
type SharedQueueModel struct {
	Checks         int          `json:"checks" yaml:"checks"`
	TruckProb      DayNight     `json:"truck_prob" yaml:"truck_prob"`
	TruckSeason    SeasonFactor `json:"truck_season" yaml:"truck_season"`
	CarProb        DayNight     `json:"car_prob" yaml:"car_prob"`
	CarSeason      SeasonFactor `json:"car_season" yaml:"car_season"`
	TruckDurations Choice[int]  `json:"truck_durations" yaml:"truck_durations"`
	CarDurations   Choice[int]  `json:"car_durations" yaml:"car_durations"`
	TruckPowerMW   float64      `json:"truck_power_mw" yaml:"truck_power_mw"`
	CarPowerMW     float64      `json:"car_power_mw" yaml:"car_power_mw"`
}

// DefaultShared returns the reference shared-queue parameters.
func DefaultShared() SharedQueueModel {
	return SharedQueueModel{
		Checks:         10,
		TruckProb:      DayNight{Day: 0.2, Night: 0.1},
		TruckSeason:    SeasonFactor{Summer: 1, Winter: 1},
		CarProb:        DayNight{Day: 0.3, Night: 0.2},
		CarSeason:      SeasonFactor{Summer: 1.3, Winter: 0.8},
		TruckDurations: NewChoice([]int{1, 3}, []float64{0.3, 0.7}),
		CarDurations:   NewChoice([]int{1, 2, 3}, []float64{0.4, 0.4, 0.2}),
		TruckPowerMW:   2.2,
		CarPowerMW:     0.22,
	}
}

// Probabilities returns the per-round truck and car arrival probabilities
// for a bucket.
func (m SharedQueueModel) Probabilities(b calendar.Bucket) (truck, car float64) {
	truck = m.TruckProb.at(b.TimeOfDay) * m.TruckSeason.at(b.Season)
	car = m.CarProb.at(b.TimeOfDay) * m.CarSeason.at(b.Season)
	return truck, car
}

// Validate checks every bucket yields probabilities in [0, 1] and that the
// duration distributions are usable.
func (m SharedQueueModel) Validate() error {
	if m.Checks < 0 {
		return &ConfigError{Field: "checks", Reason: "must not be negative"}
	}
	for _, b := range calendar.AllBuckets() {
		pt, pc := m.Probabilities(b)
		if pt < 0 || pt > 1 {
			return &ConfigError{Field: "truck_prob", Reason: fmt.Sprintf("%g outside [0,1] in %s", pt, b)}
		}
		if pc < 0 || pc > 1 {
			return &ConfigError{Field: "car_prob", Reason: fmt.Sprintf("%g outside [0,1] in %s", pc, b)}
		}
	}
	if err := validDurations(m.TruckDurations); err != nil {
		return &ConfigError{Field: "truck_durations", Reason: err.Error()}
	}
	if err := validDurations(m.CarDurations); err != nil {
		return &ConfigError{Field: "car_durations", Reason: err.Error()}
	}
	if m.TruckPowerMW < 0 || m.CarPowerMW < 0 {
		return &ConfigError{Field: "power_mw", Reason: "must not be negative"}
	}
	return nil
}

// Arrivals draws the requests arriving at step t, in arrival order.
func (m SharedQueueModel) Arrivals(t int, b calendar.Bucket, src Source) []model.Request {
	pt, pc := m.Probabilities(b)
	var out []model.Request
	for i := 0; i < m.Checks; i++ {
		if src.Float64() < pt {
			out = append(out, model.Request{
				Class:     model.ClassTruck,
				Duration:  m.TruckDurations.Pick(src),
				PowerMW:   m.TruckPowerMW,
				ArrivedAt: t,
			})
		}
		if src.Float64() < pc {
			out = append(out, model.Request{
				Class:     model.ClassCar,
				Duration:  m.CarDurations.Pick(src),
				PowerMW:   m.CarPowerMW,
				ArrivedAt: t,
			})
		}
	}
	return out
}

func validDurations(c Choice[int]) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, d := range c.Values {
		if d < 1 {
			return fmt.Errorf("duration %d < 1", d)
		}
	}
	return nil
}
