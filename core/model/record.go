package model

import "math"

// OutputRecord is the per-timestep row emitted by the simulation driver.
type OutputRecord struct {
	TimeIndex    int            `json:"time_index"`
	Bays         []VehicleClass `json:"bays"`
	TotalTrucks  int            `json:"total_trucks"`
	TotalCars    int            `json:"total_cars"`
	TotalPowerMW float64        `json:"total_power_mw"`
	TimestepType string         `json:"timestep_type"`
}

// Empty returns the number of bays with no occupant.
func (r OutputRecord) Empty() int {
	return len(r.Bays) - r.TotalTrucks - r.TotalCars
}

// Occupied returns the number of bays holding a vehicle.
func (r OutputRecord) Occupied() int {
	return r.TotalTrucks + r.TotalCars
}

// RoundMW rounds a power value to three decimals.
func RoundMW(v float64) float64 {
	return math.Round(v*1000) / 1000
}
