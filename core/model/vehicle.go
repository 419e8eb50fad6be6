package model

import (
	"fmt"
	"strings"
)

// VehicleClass identifies what occupies a bay. The numeric values are the
// bay codes written to output records.
type VehicleClass int

const (
	ClassEmpty VehicleClass = iota
	ClassCar
	ClassTruck
)

// String returns the lower-case class name.
func (c VehicleClass) String() string {
	switch c {
	case ClassEmpty:
		return "empty"
	case ClassCar:
		return "car"
	case ClassTruck:
		return "truck"
	default:
		return "unknown"
	}
}

// ParseVehicleClass converts a class name to its VehicleClass.
func ParseVehicleClass(s string) (VehicleClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "empty", "none", "":
		return ClassEmpty, nil
	case "car":
		return ClassCar, nil
	case "truck":
		return ClassTruck, nil
	default:
		return ClassEmpty, fmt.Errorf("%w: unknown vehicle class %q", ErrConfiguration, s)
	}
}

// Request is one vehicle asking for a bay. Duration and power are drawn once
// on arrival and never change afterwards.
type Request struct {
	Class     VehicleClass
	Duration  int     // timesteps the vehicle occupies a bay, >= 1
	PowerMW   float64 // constant draw while plugged in
	ArrivedAt int     // timestep of arrival
	Seq       int     // global arrival order
}

// Validate checks that the request can be installed in a bay.
func (r Request) Validate() error {
	if r.Class != ClassCar && r.Class != ClassTruck {
		return fmt.Errorf("%w: request class %s", ErrInvariantViolation, r.Class)
	}
	if r.Duration < 1 {
		return fmt.Errorf("%w: request duration %d < 1", ErrInvariantViolation, r.Duration)
	}
	if r.PowerMW < 0 {
		return fmt.Errorf("%w: negative request power %f", ErrInvariantViolation, r.PowerMW)
	}
	return nil
}
