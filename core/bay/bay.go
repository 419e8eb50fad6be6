// Package bay tracks the occupancy of a fixed set of charging bays.
package bay

import (
	"fmt"

	"github.com/kilianp07/baysim/core/model"
)

// Bay is one charging slot. Remaining counts the steps the occupant stays
// after the current one.
type Bay struct {
	Occupant  model.VehicleClass
	Remaining int
	PowerMW   float64
	Request   model.Request
}

// Free reports whether the bay has no occupant.
func (b Bay) Free() bool { return b.Occupant == model.ClassEmpty }

// InvariantError reports a bay state or operation that must never happen.
type InvariantError struct {
	Bay    int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("bay %d: %s", e.Bay, e.Reason)
}

func (e *InvariantError) Unwrap() error { return model.ErrInvariantViolation }

// Pool is the ordered set of bays. Index order is the allocation order.
type Pool struct {
	bays []Bay
}

// New returns a pool of n empty bays.
func New(n int) (*Pool, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: bay count %d < 1", model.ErrConfiguration, n)
	}
	return &Pool{bays: make([]Bay, n)}, nil
}

// Len returns the number of bays.
func (p *Pool) Len() int { return len(p.bays) }

// Bay returns a copy of bay i.
func (p *Pool) Bay(i int) Bay { return p.bays[i] }

// Tick advances every bay by one step. Bays with time left keep their
// occupant for this step; bays whose occupation has elapsed are released.
func (p *Pool) Tick() {
	for i := range p.bays {
		b := &p.bays[i]
		if b.Remaining > 0 {
			b.Remaining--
			continue
		}
		*b = Bay{}
	}
}

// Free returns the indices of empty bays in ascending order.
func (p *Pool) Free() []int {
	var out []int
	for i, b := range p.bays {
		if b.Free() {
			out = append(out, i)
		}
	}
	return out
}

// Assign installs req in bay i. The occupant counts for the current step, so
// Remaining is set to the duration minus one.
func (p *Pool) Assign(i int, req model.Request) error {
	if i < 0 || i >= len(p.bays) {
		return &InvariantError{Bay: i, Reason: fmt.Sprintf("index outside pool of %d", len(p.bays))}
	}
	if !p.bays[i].Free() {
		return &InvariantError{Bay: i, Reason: fmt.Sprintf("already occupied by %s", p.bays[i].Occupant)}
	}
	if err := req.Validate(); err != nil {
		return &InvariantError{Bay: i, Reason: err.Error()}
	}
	p.bays[i] = Bay{
		Occupant:  req.Class,
		Remaining: req.Duration - 1,
		PowerMW:   req.PowerMW,
		Request:   req,
	}
	return nil
}

// CheckInvariants verifies that every empty bay is fully reset and that no
// bay counts down without an occupant.
func (p *Pool) CheckInvariants() error {
	for i, b := range p.bays {
		if b.Remaining < 0 {
			return &InvariantError{Bay: i, Reason: fmt.Sprintf("negative remaining %d", b.Remaining)}
		}
		if b.Free() && (b.Remaining != 0 || b.PowerMW != 0) {
			return &InvariantError{Bay: i, Reason: fmt.Sprintf("empty with remaining %d power %g", b.Remaining, b.PowerMW)}
		}
	}
	return nil
}

// Snapshot returns the occupant of every bay in index order.
func (p *Pool) Snapshot() []model.VehicleClass {
	out := make([]model.VehicleClass, len(p.bays))
	for i, b := range p.bays {
		out[i] = b.Occupant
	}
	return out
}

// Counts returns the number of bays holding trucks and cars.
func (p *Pool) Counts() (trucks, cars int) {
	for _, b := range p.bays {
		switch b.Occupant {
		case model.ClassTruck:
			trucks++
		case model.ClassCar:
			cars++
		}
	}
	return trucks, cars
}

// TotalPowerMW sums the installed power, rounded to three decimals.
func (p *Pool) TotalPowerMW() float64 {
	var sum float64
	for _, b := range p.bays {
		sum += b.PowerMW
	}
	return model.RoundMW(sum)
}

// Occupied returns the requests still plugged in, in bay order.
func (p *Pool) Occupied() []model.Request {
	var out []model.Request
	for _, b := range p.bays {
		if !b.Free() {
			out = append(out, b.Request)
		}
	}
	return out
}
