package demand

import (
	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/model"
)

// IndependentModel decides, per free bay, whether a vehicle arrives.
type IndependentModel struct {
	Profile Profile
}

// NewIndependentModel validates p and returns a model using it.
func NewIndependentModel(p Profile) (*IndependentModel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &IndependentModel{Profile: p}, nil
}

// Draw consumes one classification draw and, on an arrival, one duration
// draw followed by one power draw. ok is false when the bay stays empty.
func (m *IndependentModel) Draw(t int, b calendar.Bucket, src Source) (req model.Request, ok bool, err error) {
	bp, err := m.Profile.Lookup(b)
	if err != nil {
		return model.Request{}, false, err
	}
	u := src.Float64()
	var class model.VehicleClass
	var cp ClassProfile
	switch {
	case u < bp.Arrival.Truck:
		class, cp = model.ClassTruck, bp.Truck
	case u < bp.Arrival.Truck+bp.Arrival.Car:
		class, cp = model.ClassCar, bp.Car
	default:
		return model.Request{}, false, nil
	}
	req = model.Request{Class: class, ArrivedAt: t}
	req.Duration = cp.DurationChoice().Pick(src)
	req.PowerMW = cp.PowerChoice().Pick(src)
	return req, true, nil
}
